package app_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/einstein4784/combined2026-sub002/internal/app"
	"github.com/einstein4784/combined2026-sub002/internal/auth"
	"github.com/einstein4784/combined2026-sub002/internal/rbac"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

type stubAuthRepo struct {
	user     *auth.User
	sessions map[string]string
}

func (s *stubAuthRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubAuthRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubAuthRepo) CreateSession(_ context.Context, id string, _ int64, _ time.Time, _, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]string)
	}
	s.sessions[id] = ua
	return nil
}

func (s *stubAuthRepo) DeleteSession(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

// newStackedRouter builds the production middleware chain over miniredis
// with the login routes and one guarded mutating route behind it.
func newStackedRouter(t *testing.T, repo *stubAuthRepo) (http.Handler, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")

	r := chi.NewRouter()
	for _, mw := range app.MiddlewareStack(app.MiddlewareConfig{
		Logger:         slog.Default(),
		SessionManager: sessions,
		CSRFManager:    csrf,
	}) {
		r.Use(mw)
	}

	authHandler := auth.NewHandler(slog.Default(), auth.NewService(repo), sessions, csrf)
	authHandler.MountRoutes(r)

	reached := 0
	r.Post("/delete-requests", func(w http.ResponseWriter, _ *http.Request) {
		reached++
		w.WriteHeader(http.StatusCreated)
	})
	return r, &reached
}

func supervisorRepo(t *testing.T) *stubAuthRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &stubAuthRepo{user: &auth.User{
		ID:           1,
		Email:        "supervisor@backoffice.local",
		PasswordHash: string(hash),
		Role:         rbac.RoleSupervisor,
		IsActive:     true,
	}}
}

func login(t *testing.T, router http.Handler) (*http.Cookie, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"supervisor@backoffice.local","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies, "login must establish a session cookie")

	var envelope struct {
		Data struct {
			CSRFToken string `json:"csrf_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.CSRFToken, "login must hand out the CSRF token")
	require.Equal(t, envelope.Data.CSRFToken, res.Header().Get(shared.CSRFHeader))
	return cookies[0], envelope.Data.CSRFToken
}

func TestLoginIssuesUsableCSRFToken(t *testing.T) {
	repo := supervisorRepo(t)
	router, reached := newStackedRouter(t, repo)
	cookie, token := login(t, router)

	req := httptest.NewRequest(http.MethodPost, "/delete-requests", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	req.Header.Set(shared.CSRFHeader, token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code, "authenticated caller with the login token must pass the CSRF gate")
	require.Equal(t, 1, *reached)
}

func TestMutationWithoutTokenIsRefused(t *testing.T) {
	repo := supervisorRepo(t)
	router, reached := newStackedRouter(t, repo)
	cookie, token := login(t, router)

	req := httptest.NewRequest(http.MethodPost, "/delete-requests", strings.NewReader(`{}`))
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Equal(t, 0, *reached)

	forged := httptest.NewRequest(http.MethodPost, "/delete-requests", strings.NewReader(`{}`))
	forged.AddCookie(cookie)
	forged.Header.Set(shared.CSRFHeader, token+"x")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, forged)
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Equal(t, 0, *reached)
}

func TestLoginRecordsSessionWithEmptyUserAgent(t *testing.T) {
	repo := supervisorRepo(t)
	router, _ := newStackedRouter(t, repo)

	// httptest requests carry no User-Agent; the session row must still be
	// written with the empty string rather than dropped.
	login(t, router)
	require.Len(t, repo.sessions, 1)
	for _, ua := range repo.sessions {
		require.Empty(t, ua)
	}
}
