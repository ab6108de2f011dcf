package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/highlights-keeper/internal/auth"
	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/database/books"
	"github.com/mrlokans/highlights-keeper/internal/database/sessions"
	"github.com/mrlokans/highlights-keeper/internal/database/users"
	"github.com/mrlokans/highlights-keeper/internal/kindle"
	"github.com/mrlokans/highlights-keeper/internal/rememberme"
	"github.com/mrlokans/highlights-keeper/internal/services"
	"github.com/mrlokans/highlights-keeper/internal/subscription"
)

const (
	testFreeLimit = 2
	testPassword  = "correct horse"
	checkoutURL   = "https://pay.example.com/session/abc"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCheckout struct{}

func (fakeCheckout) StartCheckout(context.Context, string) (string, error) {
	return checkoutURL, nil
}

type testServer struct {
	router  *gin.Engine
	manager *database.Manager
	books   *books.Repository
}

func setupServer(t *testing.T, configure ...func(*RouterConfig)) *testServer {
	t.Helper()

	opts := database.DefaultOptions()
	opts.LogLevel = logger.Silent
	manager := database.NewManager(filepath.Join(t.TempDir(), "api.db"), opts)
	t.Cleanup(func() { manager.Close() })

	db, err := manager.Open()
	require.NoError(t, err)

	userRepo := users.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)

	service := auth.NewService(userRepo, auth.NewSaltedSHA256Hasher("test-salt"))
	sessionService := auth.NewSessionService(sessionRepo, userRepo, rememberme.NewMemoryStore(""))
	gate := subscription.NewGate(nil, bookRepo, testFreeLimit)

	cfg := RouterConfig{
		Auth:        service,
		Sessions:    auth.NewMiddleware(sessionService, false),
		RateLimiter: auth.NewRateLimiter(auth.RateLimitConfig{MaxAttempts: 3}),
		Imports:     services.NewImportService(bookRepo, gate, nil),
		Books:       bookRepo,
		Kindle:      kindle.NewParser(),
		Upgrades:    subscription.NewPrompt(fakeCheckout{}),
		Database:    manager,
		Version:     "test",
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	return &testServer{
		router:  NewRouter(cfg),
		manager: manager,
		books:   bookRepo,
	}
}

// do sends a JSON request, authenticated with token when it is not empty.
func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signIn registers email and returns a fresh bearer token for it.
func (s *testServer) signIn(t *testing.T, email string) string {
	t.Helper()

	w := s.do(http.MethodPost, "/api/auth/register", gin.H{"email": email, "password": testPassword, "name": "Reader"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
