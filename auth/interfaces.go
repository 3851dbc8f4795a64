package auth

import "context"

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Account, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context, id ID) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Authenticate(ctx context.Context, accessToken string) (*Account, error)
}

// Repository is the credential store. Create must reject a duplicate username
// or email with ErrExistingAccount; lookups return ErrNotFound on a miss and
// for ids that are not well formed.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	FindByID(ctx context.Context, id ID) (*Account, error)
	// FindByUsernameOrEmail matches whichever of username and email is
	// non-empty. When both are given a username match takes precedence.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error)
	// SetRefreshToken updates only the refresh token; "" clears it.
	SetRefreshToken(ctx context.Context, id ID, token string) error
}

type RegisterRequest struct {
	Username       string `json:"username" validate:"required"`
	Email          string `json:"email" validate:"required"`
	FullName       string `json:"fullName" validate:"required"`
	Password       string `json:"password" validate:"required,maxbytes=72"`
	AvatarPath     string `json:"-"`
	CoverImagePath string `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"required_without=Username"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a login or a refresh exchange.
type Session struct {
	Account *Account
	Tokens  TokenPair
}
