// Package service contains the resource service layer.
//
// Each service is a thin typed wrapper over one group of billing platform
// endpoints. Services never compute derived fields — amounts, sync state,
// and display names all arrive final from the platform.
package service

import (
	"context"
	"log/slog"

	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/domain"
)

// LoginResult is the platform's login response: a token pair plus the
// signed-in operator's profile.
type LoginResult struct {
	Tokens api.TokenPair `json:"tokens"`
	User   *domain.User  `json:"user"`
}

// AuthService wraps the platform's authentication endpoints.
type AuthService interface {
	// Login exchanges credentials for a token pair.
	// Returns domain.EINVALID with field errors on bad credentials.
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// Logout invalidates the refresh token server-side. Best effort:
	// callers clear the local session regardless of the result.
	Logout(ctx context.Context, refreshToken string) error

	// Profile fetches the signed-in operator's account.
	Profile(ctx context.Context) (*domain.User, error)

	// ChangePassword updates the signed-in operator's password.
	ChangePassword(ctx context.Context, params domain.ChangePasswordParams) error

	// LoginHistory lists sign-in attempts, newest first.
	LoginHistory(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.LoginHistory], error)
}

type authService struct {
	client *api.Client
	logger *slog.Logger
}

// NewAuthService creates an AuthService backed by the platform API.
func NewAuthService(client *api.Client, logger *slog.Logger) AuthService {
	return &authService{client: client, logger: logger}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := s.client.Post(ctx, "auth.login", "/auth/login/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh": refreshToken}
	return s.client.Post(ctx, "auth.logout", "/auth/logout/", body, nil)
}

func (s *authService) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := s.client.Get(ctx, "auth.profile", "/profile/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *authService) ChangePassword(ctx context.Context, params domain.ChangePasswordParams) error {
	return s.client.Post(ctx, "auth.change_password", "/change-password/", params, nil)
}

func (s *authService) LoginHistory(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.LoginHistory], error) {
	var out domain.Page[domain.LoginHistory]
	if err := s.client.Get(ctx, "auth.login_history", "/login-history/", api.ListQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
