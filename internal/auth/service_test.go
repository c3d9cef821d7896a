package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/einstein4784/combined2026-sub002/internal/rbac"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

type stubRepo struct {
	user     *User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(_ context.Context, id string, userID int64, _ time.Time, _, _ string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func activeUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:           1,
		Email:        "supervisor@backoffice.local",
		PasswordHash: string(hash),
		Role:         rbac.RoleSupervisor,
		IsActive:     true,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct horse")}
	service := NewService(repo)

	user, err := service.Authenticate(context.Background(), "supervisor@backoffice.local", "correct horse")
	require.NoError(t, err)
	require.Equal(t, rbac.RoleSupervisor, user.Role)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correct horse")}
	service := NewService(repo)

	_, unknownErr := service.Authenticate(context.Background(), "nobody@backoffice.local", "whatever")
	_, wrongPassErr := service.Authenticate(context.Background(), "supervisor@backoffice.local", "wrong")
	require.ErrorIs(t, unknownErr, shared.ErrInvalidCredentials)
	require.ErrorIs(t, wrongPassErr, shared.ErrInvalidCredentials)
	require.Equal(t, unknownErr.Error(), wrongPassErr.Error(), "failure modes must not be distinguishable")

	repo.user.IsActive = false
	_, inactiveErr := service.Authenticate(context.Background(), "supervisor@backoffice.local", "correct horse")
	require.ErrorIs(t, inactiveErr, shared.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "pw")}
	service := NewService(repo)

	require.NoError(t, service.RegisterSession(context.Background(), "sess-1", 1, time.Now().Add(time.Hour), "127.0.0.1", "go-test"))
	require.Contains(t, repo.sessions, "sess-1")

	// Clients without a User-Agent still get their session row.
	require.NoError(t, service.RegisterSession(context.Background(), "sess-2", 1, time.Now().Add(time.Hour), "", ""))
	require.Contains(t, repo.sessions, "sess-2")
	require.NoError(t, service.RemoveSession(context.Background(), "sess-1"))
	require.NotContains(t, repo.sessions, "sess-1")
}
