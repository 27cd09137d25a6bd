package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/admin"
	"msgbarrier/internal/barrier/gate"
	"msgbarrier/internal/barrier/handler"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/internal/barrier/policies/admission"
	"msgbarrier/internal/barrier/store/originlist"
	suspensionstore "msgbarrier/internal/barrier/store/suspension"
	"msgbarrier/internal/platform/metrics"
	"msgbarrier/internal/platform/middleware"
	"msgbarrier/pkg/domain"
	dErrors "msgbarrier/pkg/domain-errors"
	"msgbarrier/pkg/testutil"
)

// =============================================================================
// Startup seeding
// =============================================================================
// Justification: the seeded allow list is what the store-backed policies
// read on first refresh, so a bad seed must stop startup.

func TestSeedAllowList(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "two configured seed origins", func(t *testing.T) {
		store := originlist.NewInMemoryStore()
		seeds := []string{"1:Parachain(1000)", "1:"}

		testutil.When(t, "the allow list is seeded", func(t *testing.T) {
			require.NoError(t, seedAllowList(ctx, store, seeds))

			testutil.Then(t, "both origins are on the allow list", func(t *testing.T) {
				entries, err := store.List(ctx, models.ListAllow, time.Now())
				require.NoError(t, err)
				require.Len(t, entries, 2)
				assert.Equal(t, domain.Parent(), entries[0].Origin)
			})
			testutil.And(t, "the entries are attributed to the system actor", func(t *testing.T) {
				entries, err := store.List(ctx, models.ListAllow, time.Now())
				require.NoError(t, err)
				for _, e := range entries {
					assert.Equal(t, seedActor, e.CreatedBy)
				}
			})
		})
	})

	t.Run("nothing configured is a no-op", func(t *testing.T) {
		store := originlist.NewInMemoryStore()
		require.NoError(t, seedAllowList(ctx, store, nil))
		entries, err := store.List(ctx, models.ListAllow, time.Now())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("invalid origin is rejected", func(t *testing.T) {
		err := seedAllowList(ctx, originlist.NewInMemoryStore(), []string{"parachain"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := seedAllowList(cancelled, originlist.NewInMemoryStore(), []string{"1:"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// Router
// =============================================================================
// Justification: health and metrics must stay reachable without a token
// while every admin route requires one.

func newTestRouter(t *testing.T, health func(context.Context) error) (http.Handler, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	origins := originlist.NewInMemoryStore()
	g, err := gate.New(nil, nil, barrier.NewAdmissionChain([]barrier.AdmissionPolicy{
		admission.NewAllowUnpaidExecutionFrom(originlist.NewSnapshot()),
	}), gate.WithLogger(logger))
	require.NoError(t, err)
	svc, err := admin.New(origins, suspensionstore.NewInMemoryStore(), admin.WithLogger(logger), admin.WithEvaluator(g))
	require.NoError(t, err)

	validator, err := middleware.NewHMACValidator("router-test-key", adminIssuer)
	require.NoError(t, err)
	token, err := validator.IssueToken("ops-bob", time.Hour, time.Now())
	require.NoError(t, err)

	return newRouter(handler.New(svc, logger), validator, metrics.NewRegistry(), health, logger), token
}

func TestRouter(t *testing.T) {
	healthy := func(context.Context) error { return nil }

	t.Run("health is open", func(t *testing.T) {
		router, _ := newTestRouter(t, healthy)
		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/health", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "ok", (*testutil.UnmarshalResponse[map[string]string](t, rr))["status"])
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("failing dependency reports unavailable", func(t *testing.T) {
		router, _ := newTestRouter(t, func(context.Context) error { return errors.New("redis down") })
		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/health", nil))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	})

	t.Run("metrics are open", func(t *testing.T) {
		router, _ := newTestRouter(t, healthy)
		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), "go_goroutines")
	})

	t.Run("admin requires a token", func(t *testing.T) {
		router, token := newTestRouter(t, healthy)

		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/admin/suspension", nil))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")

		req := testutil.WithBearer(httptest.NewRequest(http.MethodGet, "/admin/suspension", nil), token)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusOK)
	})

	t.Run("origin changes record the acting operator", func(t *testing.T) {
		router, token := newTestRouter(t, healthy)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/origins", map[string]string{
			"list":   "allow",
			"origin": "1:Parachain(1000)",
			"reason": "router test",
		})
		rr := testutil.DoRequest(router, testutil.WithBearer(req, token))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		entry := testutil.UnmarshalResponse[models.OriginEntry](t, rr)
		assert.Equal(t, "ops-bob", entry.CreatedBy)
	})
}

func TestAddOriginHandlerUsesContextActor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := admin.New(originlist.NewInMemoryStore(), suspensionstore.NewInMemoryStore(), admin.WithLogger(logger))
	require.NoError(t, err)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/origins", map[string]string{
		"list":   "deny",
		"origin": "1:Parachain(666)",
		"reason": "spam",
	})
	rr := testutil.DoRequest(http.HandlerFunc(handler.New(svc, logger).HandleAddOrigin), testutil.WithActor(req, "ops-dave"))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	entry := testutil.UnmarshalResponse[models.OriginEntry](t, rr)
	assert.Equal(t, models.ListDeny, entry.List)
	assert.Equal(t, "ops-dave", entry.CreatedBy)
}

// =============================================================================
// Commands
// =============================================================================

func TestCheckCommand(t *testing.T) {
	t.Run("default layout", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newCheckCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "deny:    2 policies")
		assert.Contains(t, out.String(), "admit:   4 policies (isolation=false)")
	})

	t.Run("unbuildable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("admit:\n  - type: teleport\n"), 0o600))

		cmd := newCheckCmd()
		cmd.SetOut(io.Discard)
		cmd.SetArgs([]string{path})
		err := cmd.Execute()
		assert.ErrorContains(t, err, `unknown admit policy "teleport"`)
	})
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("ADMIN_JWT_SIGNING_KEY", "cli-test-key")

	var out bytes.Buffer
	cmd := newTokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"ops-carol", "--ttl", "5m"})
	require.NoError(t, cmd.Execute())

	validator, err := middleware.NewHMACValidator("cli-test-key", adminIssuer)
	require.NoError(t, err)
	claims, err := validator.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops-carol", claims.Subject)
}
