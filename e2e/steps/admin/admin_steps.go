package admin

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	DELETE(path string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers admin plane step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	// Origin lists
	ctx.Step(`^I add origin "([^"]*)" to the "([^"]*)" list$`, steps.addOrigin)
	ctx.Step(`^origin "([^"]*)" is on the "([^"]*)" list$`, steps.originIsOnList)
	ctx.Step(`^I remove origin "([^"]*)" from the "([^"]*)" list$`, steps.removeOrigin)
	ctx.Step(`^I list the "([^"]*)" origins$`, steps.listOrigins)

	// Suspension
	ctx.Step(`^I suspend execution because "([^"]*)"$`, steps.suspend)
	ctx.Step(`^I resume execution$`, steps.resume)

	// Expected queries
	ctx.Step(`^I expect a response to query (\d+) from "([^"]*)"$`, steps.expectQuery)
	ctx.Step(`^I forget query (\d+)$`, steps.forgetQuery)

	// Explain
	ctx.Step(`^I explain a paid message from "([^"]*)"$`, steps.explainPaid)
	ctx.Step(`^I explain a response to query (\d+) from "([^"]*)"$`, steps.explainResponse)
	ctx.Step(`^the verdict should be "([^"]*)"$`, steps.verdictShouldBe)
	ctx.Step(`^the deciding stage should be "([^"]*)"$`, steps.stageShouldBe)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) addOrigin(_ context.Context, origin, list string) error {
	return s.tc.POST("/admin/origins", map[string]any{
		"list":   list,
		"origin": origin,
		"reason": "e2e",
	})
}

func (s *adminSteps) originIsOnList(ctx context.Context, origin, list string) error {
	if err := s.addOrigin(ctx, origin, list); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("adding %s to %s returned %d: %s", origin, list, status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *adminSteps) removeOrigin(_ context.Context, origin, list string) error {
	return s.tc.DELETE("/admin/origins/" + url.PathEscape(list) + "?origin=" + url.QueryEscape(origin))
}

func (s *adminSteps) listOrigins(_ context.Context, list string) error {
	return s.tc.GET("/admin/origins/" + url.PathEscape(list))
}

func (s *adminSteps) suspend(_ context.Context, reason string) error {
	return s.tc.POST("/admin/suspension", map[string]any{"reason": reason})
}

func (s *adminSteps) resume(_ context.Context) error {
	return s.tc.DELETE("/admin/suspension")
}

func (s *adminSteps) expectQuery(_ context.Context, queryID uint64, responder string) error {
	return s.tc.POST("/admin/queries", map[string]any{
		"query_id":  queryID,
		"responder": responder,
	})
}

func (s *adminSteps) forgetQuery(_ context.Context, queryID uint64) error {
	return s.tc.DELETE(fmt.Sprintf("/admin/queries/%d", queryID))
}

func (s *adminSteps) explainResponse(_ context.Context, queryID uint64, origin string) error {
	return s.explain(origin, []map[string]any{
		{"op": "QueryResponse", "query_id": queryID},
	})
}

func (s *adminSteps) explainPaid(_ context.Context, origin string) error {
	return s.explain(origin, []map[string]any{
		{"op": "WithdrawAsset", "assets": []map[string]any{{"id": "DOT", "amount": 10}}},
		{"op": "BuyExecution"},
		{"op": "DepositAsset"},
	})
}

func (s *adminSteps) explain(origin string, instructions []map[string]any) error {
	return s.tc.POST("/admin/explain", map[string]any{
		"origin":       origin,
		"instructions": instructions,
		"max_weight":   map[string]any{"ref_time": 1000, "proof_size": 1000},
	})
}

func (s *adminSteps) verdictShouldBe(_ context.Context, want string) error {
	return s.fieldShouldBe("verdict", want)
}

func (s *adminSteps) stageShouldBe(_ context.Context, want string) error {
	return s.fieldShouldBe("stage", want)
}

func (s *adminSteps) fieldShouldBe(field, want string) error {
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("explain returned %d: %s", status, s.tc.GetLastResponseBody())
	}
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s %q, got %v: %s", field, want, got, s.tc.GetLastResponseBody())
	}
	return nil
}
