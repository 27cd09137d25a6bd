package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"

	"msgbarrier/internal/barrier/admin"
	"msgbarrier/internal/barrier/gate"
	"msgbarrier/internal/barrier/handler"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/internal/barrier/policies/admission"
	"msgbarrier/internal/barrier/policies/suspension"
	"msgbarrier/internal/barrier/policyconfig"
	"msgbarrier/internal/barrier/store/originlist"
	suspensionstore "msgbarrier/internal/barrier/store/suspension"
	"msgbarrier/internal/platform/middleware"
	"msgbarrier/pkg/platform/middleware/auth"
	"msgbarrier/pkg/platform/middleware/request"
)

const signingKey = "e2e-signing-key"

// TestContext runs the admin plane over the default policy layout with
// in-memory stores, and remembers the last HTTP exchange.
type TestContext struct {
	server    *httptest.Server
	validator *middleware.HMACValidator
	token     string

	lastStatus int
	lastBody   []byte
}

// NewTestContext builds a fresh barrier for one scenario.
func NewTestContext() (*TestContext, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	origins := originlist.NewInMemoryStore()
	allow, err := originlist.NewRefresher(origins, models.ListAllow, originlist.NewSnapshot())
	if err != nil {
		return nil, err
	}
	deny, err := originlist.NewRefresher(origins, models.ListDeny, originlist.NewSnapshot())
	if err != nil {
		return nil, err
	}
	sw := suspension.NewSwitch(suspension.WithSwitchLogger(logger))
	queries := admission.NewExpectedQueries()

	chains, err := policyconfig.Build(policyconfig.Default(), policyconfig.Deps{
		AllowOrigins: allow.Snapshot(),
		DenyOrigins:  deny.Snapshot(),
		Switch:       sw,
		Queries:      queries,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	g, err := gate.New(chains.Deny, chains.Suspend, chains.Admit, gate.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	svc, err := admin.New(origins, suspensionstore.NewInMemoryStore(),
		admin.WithLogger(logger),
		admin.WithRefresher(allow),
		admin.WithRefresher(deny),
		admin.WithSwitch(sw),
		admin.WithEvaluator(g),
		admin.WithQueryRegistry(queries),
	)
	if err != nil {
		return nil, err
	}

	validator, err := middleware.NewHMACValidator(signingKey, "msgbarrier")
	if err != nil {
		return nil, err
	}
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, logger))
		handler.New(svc, logger).RegisterAdmin(r)
	})

	return &TestContext{server: httptest.NewServer(r), validator: validator}, nil
}

// Close stops the HTTP server.
func (tc *TestContext) Close() {
	tc.server.Close()
}

// Authenticate issues a token for subject; an empty subject clears it.
func (tc *TestContext) Authenticate(subject string) error {
	if subject == "" {
		tc.token = ""
		return nil
	}
	token, err := tc.validator.IssueToken(subject, time.Hour, time.Now())
	if err != nil {
		return err
	}
	tc.token = token
	return nil
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}

	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	value, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response %s", field, tc.lastBody)
	}
	return value, nil
}
