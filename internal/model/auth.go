package model

import "context"

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// AuthService is the platform authentication API.
type AuthService interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	CurrentUser(ctx context.Context) (User, error)
}

// TokenRevoker is implemented by auth services that can revoke a refresh
// token server-side.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, refreshToken string) error
}

// TokenSource provides the bearer token for outgoing requests.
type TokenSource interface {
	GetToken(ctx context.Context) string
}
