package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers changes to the barrier configuration that
	// must be reconstructable later: origin list edits, suspend and resume.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers messages actively blocked by a denial policy
	// or refused by every admission policy.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine verdicts useful for debugging.
	// These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from barrier and admin code to capture key actions. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Subject is the origin the event is about, in location text form.
	Subject   string `json:"subject,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Policy    string `json:"policy,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	// ActorID is the admin subject for admin-plane changes.
	ActorID  string `json:"actor_id,omitempty"`
	ClientIP string `json:"client_ip,omitempty"`
}

type AuditEvent string

const (
	// Barrier events
	EventBarrierDenied     AuditEvent = "barrier_denied"
	EventMessageRejected   AuditEvent = "message_rejected"
	EventMessageSuspended  AuditEvent = "message_suspended"
	EventMessageAdmitted   AuditEvent = "message_admitted"
	EventThrottleExhausted AuditEvent = "throttle_exhausted"

	// Admin events
	EventOriginAdded        AuditEvent = "origin_added"
	EventOriginRemoved      AuditEvent = "origin_removed"
	EventExecutionSuspended AuditEvent = "execution_suspended"
	EventExecutionResumed   AuditEvent = "execution_resumed"
	EventQueryExpected      AuditEvent = "query_expected"
	EventQueryForgotten     AuditEvent = "query_forgotten"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventOriginAdded:        CategoryCompliance,
	EventOriginRemoved:      CategoryCompliance,
	EventExecutionSuspended: CategoryCompliance,
	EventExecutionResumed:   CategoryCompliance,
	EventQueryExpected:      CategoryCompliance,
	EventQueryForgotten:     CategoryCompliance,

	EventBarrierDenied:     CategorySecurity,
	EventMessageRejected:   CategorySecurity,
	EventThrottleExhausted: CategorySecurity,

	EventMessageSuspended: CategoryOperations,
	EventMessageAdmitted:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter accepts audit events without blocking the caller.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
