// Package admin manages the barrier at runtime: the allow and deny origin
// lists, the suspension switch, outstanding queries, and explanations of
// verdicts.
package admin

//go:generate mockgen -source=admin.go -destination=mocks/mocks.go -package=mocks OriginStore,FlagStore,AuditPublisher,Refresher,Evaluator,QueryRegistry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/gate"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/domain"
	dErrors "msgbarrier/pkg/domain-errors"
	"msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/platform/sentinel"
	"msgbarrier/pkg/requestcontext"
)

const maxReasonLength = 500

// OriginStore persists managed origin entries.
type OriginStore interface {
	Add(ctx context.Context, entry *models.OriginEntry) error
	Remove(ctx context.Context, list models.OriginList, origin string) error
	List(ctx context.Context, list models.OriginList, now time.Time) ([]*models.OriginEntry, error)
}

// FlagStore persists the suspension flag shared by all executors.
type FlagStore interface {
	Get(ctx context.Context) (*models.SuspensionState, error)
	Set(ctx context.Context, state *models.SuspensionState) error
}

// AuditPublisher emits admin audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Refresher reloads one origin list into the policies reading it.
type Refresher interface {
	List() models.OriginList
	Refresh(ctx context.Context) error
}

// Evaluator runs a message through the barrier.
type Evaluator interface {
	Evaluate(ctx context.Context, msg *gate.Message) (*gate.Outcome, error)
}

// QueryRegistry holds the queries whose responses AllowKnownQueryResponses
// admits.
type QueryRegistry interface {
	Expect(queryID uint64, responder domain.Location)
	Forget(queryID uint64) bool
}

// Switch is the local suspension switch, flipped immediately so this
// executor does not wait for the next flag sync.
type Switch interface {
	Set(suspended bool) bool
}

// Service implements the admin operations.
type Service struct {
	origins        OriginStore
	flags          FlagStore
	refreshers     map[models.OriginList]Refresher
	localSwitch    Switch
	evaluator      Evaluator
	queries        QueryRegistry
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithRefresher registers the refresher for its list. Origin changes on
// that list are pushed to the running policies right away.
func WithRefresher(r Refresher) Option {
	return func(s *Service) {
		if r != nil {
			s.refreshers[r.List()] = r
		}
	}
}

func WithSwitch(sw Switch) Option {
	return func(s *Service) {
		s.localSwitch = sw
	}
}

// WithEvaluator enables Explain.
func WithEvaluator(e Evaluator) Option {
	return func(s *Service) {
		s.evaluator = e
	}
}

// WithQueryRegistry enables ExpectQuery and ForgetQuery.
func WithQueryRegistry(q QueryRegistry) Option {
	return func(s *Service) {
		s.queries = q
	}
}

func New(origins OriginStore, flags FlagStore, opts ...Option) (*Service, error) {
	if origins == nil {
		return nil, errors.New("origin store is required")
	}
	if flags == nil {
		return nil, errors.New("flag store is required")
	}
	s := &Service{
		origins:    origins,
		flags:      flags,
		refreshers: make(map[models.OriginList]Refresher),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// =============================================================================
// Origin lists
// =============================================================================

// AddOriginRequest adds or replaces an origin on a list.
type AddOriginRequest struct {
	List   string `json:"list"`
	Origin string `json:"origin"`
	Reason string `json:"reason"`
	// ExpiresAt makes the entry temporary.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (r *AddOriginRequest) Normalize() {
	r.List = strings.ToLower(strings.TrimSpace(r.List))
	r.Origin = strings.TrimSpace(r.Origin)
	r.Reason = strings.TrimSpace(r.Reason)
}

func (s *Service) AddOrigin(ctx context.Context, req *AddOriginRequest) (*models.OriginEntry, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	req.Normalize()

	list, err := models.ParseOriginList(req.List)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid list")
	}
	origin, err := domain.ParseLocation(req.Origin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid origin")
	}
	if len(req.Reason) > maxReasonLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	}
	now := requestcontext.Now(ctx)
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expires_at must be in the future")
	}

	entry := models.NewOriginEntry(list, origin, req.Reason, requestcontext.ActorID(ctx), req.ExpiresAt, now)
	if err := s.origins.Add(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add origin")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventOriginAdded,
		"origin", origin.String(),
		"decision", string(list),
		"reason", req.Reason,
	)
	s.refresh(ctx, list)
	return entry, nil
}

func (s *Service) RemoveOrigin(ctx context.Context, listName, originText string) error {
	list, err := models.ParseOriginList(strings.ToLower(strings.TrimSpace(listName)))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid list")
	}
	origin, err := domain.ParseLocation(strings.TrimSpace(originText))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid origin")
	}

	if err := s.origins.Remove(ctx, list, origin.String()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "origin not on list")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove origin")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventOriginRemoved,
		"origin", origin.String(),
		"decision", string(list),
	)
	s.refresh(ctx, list)
	return nil
}

func (s *Service) ListOrigins(ctx context.Context, listName string) ([]*models.OriginEntry, error) {
	list, err := models.ParseOriginList(strings.ToLower(strings.TrimSpace(listName)))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid list")
	}
	entries, err := s.origins.List(ctx, list, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list origins")
	}
	return entries, nil
}

// refresh pushes a list change to the policies. The periodic refresher
// catches up on failure, so errors are only logged.
func (s *Service) refresh(ctx context.Context, list models.OriginList) {
	r, ok := s.refreshers[list]
	if !ok {
		return
	}
	if err := r.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh origin list after change",
			"list", string(list),
			"error", err,
		)
	}
}

// =============================================================================
// Suspension
// =============================================================================

func (s *Service) Suspend(ctx context.Context, reason string) (*models.SuspensionState, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	if len(reason) > maxReasonLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	}
	return s.setSuspended(ctx, true, reason, audit.EventExecutionSuspended)
}

func (s *Service) Resume(ctx context.Context) (*models.SuspensionState, error) {
	return s.setSuspended(ctx, false, "", audit.EventExecutionResumed)
}

func (s *Service) SuspensionStatus(ctx context.Context) (*models.SuspensionState, error) {
	state, err := s.flags.Get(ctx)
	if err != nil {
		return nil, flagError(err, "failed to read suspension flag")
	}
	return state, nil
}

func (s *Service) setSuspended(ctx context.Context, suspended bool, reason string, event audit.AuditEvent) (*models.SuspensionState, error) {
	state := &models.SuspensionState{
		Suspended: suspended,
		Reason:    reason,
		UpdatedBy: requestcontext.ActorID(ctx),
		UpdatedAt: requestcontext.Now(ctx),
	}
	if err := s.flags.Set(ctx, state); err != nil {
		return nil, flagError(err, "failed to update suspension flag")
	}
	if s.localSwitch != nil {
		s.localSwitch.Set(suspended)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, event,
		"subject", "executor",
		"reason", reason,
	)
	return state, nil
}

func flagError(err error, message string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

// =============================================================================
// Expected queries
// =============================================================================

// ExpectQueryRequest registers a query sent by this executor whose
// response from Responder should be admitted.
type ExpectQueryRequest struct {
	QueryID   uint64 `json:"query_id"`
	Responder string `json:"responder"`
}

// ExpectedQuery is an outstanding query as stored in the registry.
type ExpectedQuery struct {
	QueryID   uint64          `json:"query_id"`
	Responder domain.Location `json:"responder"`
}

func (s *Service) ExpectQuery(ctx context.Context, req *ExpectQueryRequest) (*ExpectedQuery, error) {
	if s.queries == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "query registry is not configured")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	responder, err := domain.ParseLocation(strings.TrimSpace(req.Responder))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid responder")
	}

	s.queries.Expect(req.QueryID, responder)
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventQueryExpected,
		"origin", responder.String(),
		"query_id", req.QueryID,
	)
	return &ExpectedQuery{QueryID: req.QueryID, Responder: responder}, nil
}

func (s *Service) ForgetQuery(ctx context.Context, queryID uint64) error {
	if s.queries == nil {
		return dErrors.New(dErrors.CodeUnavailable, "query registry is not configured")
	}
	if !s.queries.Forget(queryID) {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("query %d is not expected", queryID))
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventQueryForgotten,
		"query_id", queryID,
	)
	return nil
}

// =============================================================================
// Explain
// =============================================================================

// ExplainRequest is a message to run through the barrier.
type ExplainRequest struct {
	Origin       string              `json:"origin"`
	Instructions domain.Instructions `json:"instructions"`
	MaxWeight    domain.Weight       `json:"max_weight"`
	WeightCredit domain.Weight       `json:"weight_credit"`
}

// TrialView is one policy evaluation as reported by Explain.
type TrialView struct {
	Chain  string `json:"chain"`
	Policy string `json:"policy"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// Explanation is the verdict for one message with every trial behind it.
type Explanation struct {
	Verdict      string              `json:"verdict"`
	Stage        string              `json:"stage"`
	Error        string              `json:"error,omitempty"`
	MessageID    string              `json:"message_id"`
	Instructions domain.Instructions `json:"instructions"`
	WeightCredit domain.Weight       `json:"weight_credit"`
	Trials       []TrialView         `json:"trials"`
}

// Explain evaluates req through the live barrier and reports every trial.
// The evaluation is real: it consumes throttle allowance and is audited
// like any other message.
func (s *Service) Explain(ctx context.Context, req *ExplainRequest) (*Explanation, error) {
	if s.evaluator == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "explain is not configured")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	origin, err := domain.ParseLocation(strings.TrimSpace(req.Origin))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid origin")
	}
	if len(req.Instructions) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "instructions are required")
	}

	recorder := barrier.NewRecorder()
	out, err := s.evaluator.Evaluate(barrier.WithObserver(ctx, recorder), &gate.Message{
		Origin:       origin,
		Instructions: req.Instructions,
		MaxWeight:    req.MaxWeight,
		WeightCredit: req.WeightCredit,
	})
	if err != nil && out == nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate message")
	}

	trials := recorder.Trials()
	views := make([]TrialView, 0, len(trials))
	for _, t := range trials {
		view := TrialView{Chain: string(t.Chain), Policy: t.Policy, Passed: t.Passed}
		if t.Err != nil {
			view.Error = t.Err.Error()
		}
		views = append(views, view)
	}

	exp := &Explanation{
		Verdict:      string(out.Verdict),
		Stage:        string(out.Stage),
		MessageID:    out.MessageID.String(),
		Instructions: out.Instructions,
		WeightCredit: out.Properties.WeightCredit,
		Trials:       views,
	}
	if out.Err != nil {
		exp.Error = out.Err.Error()
	}
	return exp, nil
}
