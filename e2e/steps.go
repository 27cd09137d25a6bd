package e2e

import (
	"github.com/cucumber/godog"

	"msgbarrier/e2e/steps/admin"
	"msgbarrier/e2e/steps/chain"
	"msgbarrier/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (authentication, generic assertions)
	common.RegisterSteps(ctx, tc)

	// Register chain semantics steps; these run the chains in process
	chain.RegisterSteps(ctx)

	// Register admin plane steps
	admin.RegisterSteps(ctx, tc)
}
