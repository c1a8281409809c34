// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/authz"
	"github.com/tomtom215/aerographus/internal/cache"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/inference"
	"github.com/tomtom215/aerographus/internal/models"
	"github.com/tomtom215/aerographus/internal/weather"
)

// apiDBSemaphore serializes DuckDB lifecycles across parallel tests in
// this package, matching the database package's test discipline.
var apiDBSemaphore = make(chan struct{}, 1)

// fakeWeatherUpstream serves canned OpenWeather responses. The pollution
// payload yields AQI 200 dominated by PM10.
func fakeWeatherUpstream() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/geo/1.0/direct":
			if r.URL.Query().Get("q") == "Nowhere" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(fmt.Sprintf(
				`[{"name":%q,"lat":28.6139,"lon":77.209,"country":"IN","state":"Delhi"}]`,
				r.URL.Query().Get("q"))))
		case "/geo/1.0/reverse":
			_, _ = w.Write([]byte(`[{"name":"Mumbai","lat":19.07,"lon":72.88,"country":"IN","state":"Maharashtra"}]`))
		case "/data/2.5/air_pollution":
			_, _ = w.Write([]byte(`{"list":[{"dt":1756100000,"main":{"aqi":4},
				"components":{"co":500,"no2":20,"o3":30,"so2":10,"pm2_5":30,"pm10":250,"nh3":2}}]}`))
		case "/data/2.5/air_pollution/forecast":
			_, _ = w.Write([]byte(`{"list":[{"dt":1756100000,"components":{"pm2_5":30,"pm10":50}}]}`))
		case "/data/2.5/weather":
			_, _ = w.Write([]byte(`{
				"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}],
				"main":{"temp":29,"feels_like":31,"pressure":1008,"humidity":55},
				"visibility":8000,"wind":{"speed":3,"deg":90},"clouds":{"all":5},
				"sys":{"sunrise":1,"sunset":2},"name":"Delhi"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

type testEnv struct {
	srv *httptest.Server
	db  *database.DB
	cfg *config.Config
}

// setupTestServer stands up the full route tree over an in-memory
// database and a fake weather upstream. No model artifact exists, so
// the engine serves heuristics when the fallback flag is on.
func setupTestServer(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	apiDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-apiDBSemaphore })

	upstream := httptest.NewServer(fakeWeatherUpstream())
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Weather: config.WeatherConfig{
			APIKey:        "test-key",
			BaseURL:       upstream.URL,
			Timeout:       5 * time.Second,
			RetryAttempts: 1,
			RateLimit:     1000,
			RateBurst:     1000,
			CacheTTL:      time.Minute,
			Concurrency:   3,
		},
		Model: config.ModelConfig{
			Path:              t.TempDir() + "/missing.bundle",
			HeuristicFallback: true,
		},
		Auth: config.AuthConfig{
			JWTSecret:         "0123456789abcdef0123456789abcdef",
			TokenExpiry:       time.Hour,
			RateLimitDisabled: true,
		},
		Events: config.EventsConfig{Enabled: false},
	}
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.SeedTips(context.Background()); err != nil {
		t.Fatalf("SeedTips() failed: %v", err)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		t.Fatalf("NewJWTManager() failed: %v", err)
	}
	authSvc := auth.NewService(db,
		auth.NewPasswordHasher(bcrypt.MinCost),
		jwtManager,
		auth.NewLockoutTracker(auth.LockoutConfig{
			MaxAttempts:        5,
			LockoutDuration:    time.Minute,
			MaxLockoutDuration: time.Hour,
			CleanupInterval:    time.Hour,
		}))

	store, err := cache.New(&config.CacheConfig{InMemory: true})
	if err != nil {
		t.Fatalf("cache.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	weatherSvc := weather.NewService(weather.NewClient(&cfg.Weather), store, db, &cfg.Weather)

	engine := inference.NewEngine(inference.NewModelCache(inference.NewStore(cfg.Model)))

	enforcer, err := authz.NewEnforcer(&config.AuthzConfig{})
	if err != nil {
		t.Fatalf("NewEnforcer() failed: %v", err)
	}
	t.Cleanup(enforcer.Close)

	handlers := NewHandlers(cfg, authSvc, db, weatherSvc, engine, nil, "test")
	router := NewRouter(handlers,
		NewMiddleware(&cfg.Auth),
		auth.NewMiddleware(jwtManager),
		authz.NewMiddleware(enforcer),
		nil)

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, cfg: cfg}
}

// doJSON performs a request and decodes the envelope.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) (int, models.APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal() failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest() failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do(%s %s) failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("Decode(%s %s) failed: %v", method, path, err)
	}
	return resp.StatusCode, envelope
}

// signup creates an account and returns its token.
func (e *testEnv) signup(t *testing.T, email string) string {
	t.Helper()

	status, envelope := e.doJSON(t, http.MethodPost, "/api/v1/auth/signup", "", models.SignupRequest{
		Name:            "Test User",
		Email:           email,
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup status = %d, envelope = %+v", status, envelope)
	}

	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("signup data has type %T", envelope.Data)
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("signup returned no token")
	}
	return token
}

func errorCode(envelope models.APIResponse) string {
	if envelope.Error == nil {
		return ""
	}
	return envelope.Error.Code
}

func TestSignupLoginMe(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	token := env.signup(t, "ada@example.com")

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	data := envelope.Data.(map[string]any)
	if data["email"] != "ada@example.com" {
		t.Errorf("email = %v", data["email"])
	}
	if data["city"] != models.DefaultCity {
		t.Errorf("city = %v, want %s", data["city"], models.DefaultCity)
	}

	status, envelope = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
	})
	if status != http.StatusOK {
		t.Errorf("login status = %d, envelope = %+v", status, envelope)
	}
}

func TestSignupDuplicateEmailConflict(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	env.signup(t, "dup@example.com")
	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/auth/signup", "", models.SignupRequest{
		Name:            "Other User",
		Email:           "dup@example.com",
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
	})
	if status != http.StatusConflict {
		t.Errorf("status = %d, want 409", status)
	}
	if errorCode(envelope) != "CONFLICT" {
		t.Errorf("code = %q, want CONFLICT", errorCode(envelope))
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/auth/signup", "", models.SignupRequest{
		Name:            "Test User",
		Email:           "mismatch@example.com",
		Password:        "hunter2hunter2",
		ConfirmPassword: "different-password",
	})
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if errorCode(envelope) != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", errorCode(envelope))
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	env.signup(t, "login@example.com")
	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{
		Email:    "login@example.com",
		Password: "not-the-password",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	if errorCode(envelope) != "AUTHENTICATION_ERROR" {
		t.Errorf("code = %q", errorCode(envelope))
	}
}

func TestAuthRequiredEndpoints(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/favorites"},
		{http.MethodPost, "/api/v1/predict"},
		{http.MethodPut, "/api/v1/users/me/city"},
		{http.MethodPost, "/api/v1/model/reload"},
	}
	for _, tc := range cases {
		status, envelope := env.doJSON(t, tc.method, tc.path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, status)
		}
		if errorCode(envelope) != "AUTHENTICATION_ERROR" {
			t.Errorf("%s %s code = %q", tc.method, tc.path, errorCode(envelope))
		}
	}
}

func TestUpdateCity(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	token := env.signup(t, "city@example.com")
	status, envelope := env.doJSON(t, http.MethodPut, "/api/v1/users/me/city", token,
		models.UpdateCityRequest{City: "Mumbai"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, envelope = %+v", status, envelope)
	}
	data := envelope.Data.(map[string]any)
	if data["city"] != "Mumbai" {
		t.Errorf("city = %v, want Mumbai", data["city"])
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)
	token := env.signup(t, "fav@example.com")

	// Add, duplicate add, list, remove, absent remove.
	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/favorites", token,
		models.FavoriteRequest{City: "Mumbai"})
	if status != http.StatusOK {
		t.Fatalf("add status = %d", status)
	}
	if data := envelope.Data.(map[string]any); data["changed"] != true {
		t.Errorf("first add changed = %v, want true", data["changed"])
	}

	_, envelope = env.doJSON(t, http.MethodPost, "/api/v1/favorites", token,
		models.FavoriteRequest{City: "Mumbai"})
	if data := envelope.Data.(map[string]any); data["changed"] != false {
		t.Errorf("duplicate add changed = %v, want false", data["changed"])
	}

	status, envelope = env.doJSON(t, http.MethodGet, "/api/v1/favorites", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	cities, ok := envelope.Data.([]any)
	if !ok || len(cities) != 1 || cities[0] != "Mumbai" {
		t.Errorf("favorites = %v, want [Mumbai]", envelope.Data)
	}

	status, envelope = env.doJSON(t, http.MethodDelete, "/api/v1/favorites/Mumbai", token, nil)
	if status != http.StatusOK {
		t.Fatalf("remove status = %d", status)
	}
	if data := envelope.Data.(map[string]any); data["changed"] != true {
		t.Errorf("remove changed = %v, want true", data["changed"])
	}

	_, envelope = env.doJSON(t, http.MethodDelete, "/api/v1/favorites/Mumbai", token, nil)
	if data := envelope.Data.(map[string]any); data["changed"] != false {
		t.Errorf("absent remove changed = %v, want false", data["changed"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}
	if data := envelope.Data.(map[string]any); data["status"] != "ok" {
		t.Errorf("health = %v", data["status"])
	}

	status, envelope = env.doJSON(t, http.MethodGet, "/api/v1/health/ready", "", nil)
	if status != http.StatusOK {
		t.Fatalf("ready status = %d", status)
	}
	data := envelope.Data.(map[string]any)
	if data["ready"] != true {
		t.Errorf("ready = %v, want true", data["ready"])
	}
	checks := data["checks"].(map[string]any)
	if checks["database"] != "ok" {
		t.Errorf("database check = %v", checks["database"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	resp, err := http.Get(env.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("Get(/metrics) failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
