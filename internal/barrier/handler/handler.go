// Package handler exposes the barrier admin service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"msgbarrier/internal/barrier/admin"
	"msgbarrier/internal/barrier/models"
	dErrors "msgbarrier/pkg/domain-errors"
	"msgbarrier/pkg/platform/httputil"
	"msgbarrier/pkg/requestcontext"
)

// Service defines the admin operations the handler needs.
type Service interface {
	AddOrigin(ctx context.Context, req *admin.AddOriginRequest) (*models.OriginEntry, error)
	RemoveOrigin(ctx context.Context, list, origin string) error
	ListOrigins(ctx context.Context, list string) ([]*models.OriginEntry, error)
	Suspend(ctx context.Context, reason string) (*models.SuspensionState, error)
	Resume(ctx context.Context) (*models.SuspensionState, error)
	SuspensionStatus(ctx context.Context) (*models.SuspensionState, error)
	ExpectQuery(ctx context.Context, req *admin.ExpectQueryRequest) (*admin.ExpectedQuery, error)
	ForgetQuery(ctx context.Context, queryID uint64) error
	Explain(ctx context.Context, req *admin.ExplainRequest) (*admin.Explanation, error)
}

// Handler wires admin endpoints to the admin service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the admin endpoints. Callers add authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/origins/{list}", h.HandleListOrigins)
		r.Post("/origins", h.HandleAddOrigin)
		r.Delete("/origins/{list}", h.HandleRemoveOrigin)

		r.Get("/suspension", h.HandleSuspensionStatus)
		r.Post("/suspension", h.HandleSuspend)
		r.Delete("/suspension", h.HandleResume)

		r.Post("/queries", h.HandleExpectQuery)
		r.Delete("/queries/{id}", h.HandleForgetQuery)

		r.Post("/explain", h.HandleExplain)
	})
}

// HandleListOrigins handles GET /admin/origins/{list}.
func (h *Handler) HandleListOrigins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.ListOrigins(ctx, chi.URLParam(r, "list"))
	if err != nil {
		h.fail(ctx, w, "list origins failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// HandleAddOrigin handles POST /admin/origins.
func (h *Handler) HandleAddOrigin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddOriginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	entry, err := h.service.AddOrigin(ctx, req.toService())
	if err != nil {
		h.fail(ctx, w, "add origin failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleRemoveOrigin handles DELETE /admin/origins/{list}?origin=....
// The origin travels as a query parameter because its interior may
// contain slashes.
func (h *Handler) HandleRemoveOrigin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.RemoveOrigin(ctx, chi.URLParam(r, "list"), r.URL.Query().Get("origin")); err != nil {
		h.fail(ctx, w, "remove origin failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSuspensionStatus handles GET /admin/suspension.
func (h *Handler) HandleSuspensionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.service.SuspensionStatus(ctx)
	if err != nil {
		h.fail(ctx, w, "read suspension failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

// HandleSuspend handles POST /admin/suspension.
func (h *Handler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SuspendRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	state, err := h.service.Suspend(ctx, req.Reason)
	if err != nil {
		h.fail(ctx, w, "suspend failed", err)
		return
	}
	h.logger.InfoContext(ctx, "execution suspended",
		"request_id", requestcontext.RequestID(ctx),
		"actor", requestcontext.ActorID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, state)
}

// HandleResume handles DELETE /admin/suspension.
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.service.Resume(ctx)
	if err != nil {
		h.fail(ctx, w, "resume failed", err)
		return
	}
	h.logger.InfoContext(ctx, "execution resumed",
		"request_id", requestcontext.RequestID(ctx),
		"actor", requestcontext.ActorID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, state)
}

// HandleExpectQuery handles POST /admin/queries.
func (h *Handler) HandleExpectQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ExpectQueryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	q, err := h.service.ExpectQuery(ctx, req.toService())
	if err != nil {
		h.fail(ctx, w, "expect query failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, q)
}

// HandleForgetQuery handles DELETE /admin/queries/{id}.
func (h *Handler) HandleForgetQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.fail(ctx, w, "forget query failed", dErrors.New(dErrors.CodeInvalidInput, "query id must be an unsigned integer"))
		return
	}
	if err := h.service.ForgetQuery(ctx, id); err != nil {
		h.fail(ctx, w, "forget query failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExplain handles POST /admin/explain.
func (h *Handler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ExplainRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	exp, err := h.service.Explain(ctx, req.toService())
	if err != nil {
		h.fail(ctx, w, "explain failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
