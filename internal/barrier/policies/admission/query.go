package admission

import (
	"context"
	"fmt"
	"sync"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/policies"
	"msgbarrier/pkg/domain"
)

// ResponseHandler knows which query responses are outstanding.
type ResponseHandler interface {
	ExpectingResponse(origin domain.Location, queryID uint64, querier *domain.Location) bool
}

// AllowKnownQueryResponses accepts a lone QueryResponse (optionally
// followed by SetTopic) that answers an outstanding query.
type AllowKnownQueryResponses struct {
	handler ResponseHandler
}

func NewAllowKnownQueryResponses(handler ResponseHandler) *AllowKnownQueryResponses {
	return &AllowKnownQueryResponses{handler: handler}
}

func (p *AllowKnownQueryResponses) Name() string { return "AllowKnownQueryResponses" }

func (p *AllowKnownQueryResponses) ShouldExecute(_ context.Context, origin domain.Location, instructions *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
	body := withoutTrailingTopic(*instructions)
	if len(body) != 1 || body[0].Op != domain.OpQueryResponse {
		return barrier.Reject(barrier.KindBadFormat, "expected a single QueryResponse")
	}
	resp := body[0]
	if !p.handler.ExpectingResponse(origin, resp.QueryID, resp.Querier) {
		return barrier.Reject(barrier.KindUnsupported, fmt.Sprintf("unexpected response to query %d", resp.QueryID))
	}
	return nil
}

// AllowSubscriptionsFrom accepts a lone SubscribeVersion or
// UnsubscribeVersion (optionally followed by SetTopic) from trusted origins.
type AllowSubscriptionsFrom struct {
	origins policies.OriginMatcher
}

func NewAllowSubscriptionsFrom(origins policies.OriginMatcher) *AllowSubscriptionsFrom {
	return &AllowSubscriptionsFrom{origins: origins}
}

func (p *AllowSubscriptionsFrom) Name() string { return "AllowSubscriptionsFrom" }

func (p *AllowSubscriptionsFrom) ShouldExecute(_ context.Context, origin domain.Location, instructions *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
	if !p.origins.Contains(origin) {
		return barrier.Reject(barrier.KindUnsupported, "origin not allowed to subscribe")
	}
	body := withoutTrailingTopic(*instructions)
	if len(body) != 1 {
		return barrier.Reject(barrier.KindBadFormat, "expected a single subscription instruction")
	}
	switch body[0].Op {
	case domain.OpSubscribeVersion, domain.OpUnsubscribeVersion:
		return nil
	default:
		return barrier.Reject(barrier.KindBadFormat, "expected a single subscription instruction")
	}
}

// ExpectedQueries is an in-memory ResponseHandler keyed by query id.
type ExpectedQueries struct {
	mu      sync.RWMutex
	pending map[uint64]domain.Location
}

func NewExpectedQueries() *ExpectedQueries {
	return &ExpectedQueries{pending: make(map[uint64]domain.Location)}
}

// Expect registers an outstanding query answered by responder.
func (q *ExpectedQueries) Expect(queryID uint64, responder domain.Location) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[queryID] = responder
}

// Forget drops an outstanding query and reports whether it was pending.
func (q *ExpectedQueries) Forget(queryID uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.pending[queryID]
	delete(q.pending, queryID)
	return ok
}

func (q *ExpectedQueries) ExpectingResponse(origin domain.Location, queryID uint64, _ *domain.Location) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	responder, ok := q.pending[queryID]
	return ok && responder == origin
}

func withoutTrailingTopic(insts domain.Instructions) domain.Instructions {
	if last, ok := insts.Last(); ok && last.Op == domain.OpSetTopic {
		return insts[:len(insts)-1]
	}
	return insts
}
