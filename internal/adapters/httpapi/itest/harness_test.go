package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aquaclean/carwash-api/internal/adapters/httpapi"
	memclock "github.com/aquaclean/carwash-api/internal/adapters/memory/clock"
	memevents "github.com/aquaclean/carwash-api/internal/adapters/memory/events"
	memidempotency "github.com/aquaclean/carwash-api/internal/adapters/memory/idempotency"
	memnotifications "github.com/aquaclean/carwash-api/internal/adapters/memory/notificationrepo"
	memrevenue "github.com/aquaclean/carwash-api/internal/adapters/memory/revenuerepo"
	memsessions "github.com/aquaclean/carwash-api/internal/adapters/memory/sessionstore"
	memusers "github.com/aquaclean/carwash-api/internal/adapters/memory/userrepo"
	pgidempotency "github.com/aquaclean/carwash-api/internal/adapters/postgres/idempotency"
	pgnotifications "github.com/aquaclean/carwash-api/internal/adapters/postgres/notificationrepo"
	pgrevenue "github.com/aquaclean/carwash-api/internal/adapters/postgres/revenuerepo"
	pgsessions "github.com/aquaclean/carwash-api/internal/adapters/postgres/sessionstore"
	postgres_testutil "github.com/aquaclean/carwash-api/internal/adapters/postgres/testutil"
	pgusers "github.com/aquaclean/carwash-api/internal/adapters/postgres/userrepo"
	"github.com/aquaclean/carwash-api/internal/adapters/seed"
	"github.com/aquaclean/carwash-api/internal/app/admin"
	"github.com/aquaclean/carwash-api/internal/app/analytics"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/app/customer"
	idempotencyport "github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
	notificationport "github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
	revenueport "github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
	sessionport "github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
	userport "github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	clk     *memclock.ManualClock
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()
	ctx := context.Background()

	clk := memclock.NewManualClock(time.Date(2024, 7, 9, 9, 0, 0, 0, time.UTC))

	var (
		users         userport.Repository
		notifications notificationport.Repository
		revenue       revenueport.Repository
		sessions      sessionport.Store
		idemStore     idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t, "users", "notifications", "revenue", "sessions", "idempotency_keys")
		users = pgusers.NewRepo(pool)
		notifications = pgnotifications.NewRepo(pool)
		revenue = pgrevenue.NewRepo(pool)
		sessions = pgsessions.NewStore(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendMemory:
		users = memusers.NewRepo()
		notifications = memnotifications.NewRepo()
		revenue = memrevenue.NewRepo()
		sessions = memsessions.NewStore()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	if _, err := seed.Load(ctx, seed.Target{Users: users, Revenue: revenue, Notifications: notifications}, hasher, "password123", clk.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	authSvc := auth.NewService(users, sessions, clk, hasher, auth.Config{
		AdminEmail:    "admin@carwash.com",
		AdminPassword: "admin123",
		SessionTTL:    30 * time.Minute,
		SignupEnabled: true,
	}, nil)
	adminSvc := admin.NewService(admin.Deps{
		Accounts:      authSvc,
		Users:         users,
		Notifications: notifications,
		Revenue:       revenue,
		Publisher:     memevents.NewRecorder(),
		Clock:         clk,
	}, admin.Settings{Business: admin.Business{Name: "AquaClean Car Wash"}, SessionTimeoutMinutes: 30, AllowUserRegistration: true})

	api := httpapi.NewServer(
		authSvc,
		customer.NewService(authSvc, notifications, clk),
		adminSvc,
		analytics.NewService(users, revenue),
		idemStore,
		clk,
		nil,
	)
	srv := httptest.NewServer(httpapi.NewRouter(api, httpapi.RouterOptions{}))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		clk:     clk,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, token string, body any, headers ...string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) login(t *testing.T, email, password string) httpapi.SessionResponse {
	t.Helper()
	status, body, _ := s.doJSON(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%s", email, status, string(body))
	}
	return mustUnmarshal[httpapi.SessionResponse](t, body)
}

type errorResponse struct {
	Error struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details"`
		RequestID string         `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
