package handler

import (
	"strings"
	"time"

	"msgbarrier/internal/barrier/admin"
	"msgbarrier/pkg/domain"
	dErrors "msgbarrier/pkg/domain-errors"
)

// AddOriginRequest is the HTTP request body for POST /admin/origins.
type AddOriginRequest struct {
	List      string     `json:"list"`
	Origin    string     `json:"origin"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Validate implements httputil.Validatable. Semantic checks live in the
// service; this only rejects obviously empty bodies.
func (r *AddOriginRequest) Validate() error {
	if strings.TrimSpace(r.List) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "list is required")
	}
	if strings.TrimSpace(r.Origin) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "origin is required")
	}
	return nil
}

func (r *AddOriginRequest) toService() *admin.AddOriginRequest {
	return &admin.AddOriginRequest{
		List:      r.List,
		Origin:    r.Origin,
		Reason:    r.Reason,
		ExpiresAt: r.ExpiresAt,
	}
}

// SuspendRequest is the HTTP request body for POST /admin/suspension.
type SuspendRequest struct {
	Reason string `json:"reason"`
}

func (r *SuspendRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	return nil
}

// ExpectQueryRequest is the HTTP request body for POST /admin/queries.
type ExpectQueryRequest struct {
	QueryID   uint64 `json:"query_id"`
	Responder string `json:"responder"`
}

func (r *ExpectQueryRequest) Validate() error {
	if strings.TrimSpace(r.Responder) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "responder is required")
	}
	return nil
}

func (r *ExpectQueryRequest) toService() *admin.ExpectQueryRequest {
	return &admin.ExpectQueryRequest{QueryID: r.QueryID, Responder: r.Responder}
}

// ExplainRequest is the HTTP request body for POST /admin/explain.
type ExplainRequest struct {
	Origin       string              `json:"origin"`
	Instructions domain.Instructions `json:"instructions"`
	MaxWeight    domain.Weight       `json:"max_weight"`
	WeightCredit domain.Weight       `json:"weight_credit"`
}

func (r *ExplainRequest) Validate() error {
	if len(r.Instructions) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "instructions are required")
	}
	return nil
}

func (r *ExplainRequest) toService() *admin.ExplainRequest {
	return &admin.ExplainRequest{
		Origin:       r.Origin,
		Instructions: r.Instructions,
		MaxWeight:    r.MaxWeight,
		WeightCredit: r.WeightCredit,
	}
}
