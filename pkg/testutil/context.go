package testutil

import (
	"net/http"

	"msgbarrier/pkg/requestcontext"
)

// WithActor marks the request as made by the admin subject, as the auth
// middleware does for a valid bearer token.
func WithActor(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), subject))
}
