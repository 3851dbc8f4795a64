package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jimiolaniyan/vidhub/media"
)

type service struct {
	accounts Repository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	uploader media.Uploader
	log      *zap.Logger
}

func NewService(accounts Repository, hasher PasswordHasher, tokens *TokenIssuer, uploader media.Uploader, log *zap.Logger) Service {
	return &service{accounts: accounts, hasher: hasher, tokens: tokens, uploader: uploader, log: log}
}

func (svc *service) Register(ctx context.Context, r RegisterRequest) (_ *Account, err error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)

	log := svc.log.With(zap.String("username", r.Username))
	defer func() {
		if err != nil {
			log.Warn("register failed", zap.Error(err))
		}
	}()

	if err := validateRequest(r, ErrMissingFields); err != nil {
		return nil, err
	}

	if err := svc.verifyNotInUse(ctx, r.Username, r.Email); err != nil {
		return nil, err
	}

	if r.AvatarPath == "" {
		return nil, ErrAvatarRequired
	}

	avatar, err := svc.uploader.Upload(ctx, r.AvatarPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAvatarUpload, err)
	}

	var cover string
	if r.CoverImagePath != "" {
		if cover, err = svc.uploader.Upload(ctx, r.CoverImagePath); err != nil {
			log.Warn("cover image upload failed", zap.Error(err))
			cover, err = "", nil
		}
	}

	acc := NewAccount(r.Username, r.Email, r.FullName)
	acc.ID = NewID()
	acc.Avatar = avatar
	acc.CoverImage = cover
	acc.SetPassword(r.Password)

	if err := svc.save(ctx, acc); err != nil {
		return nil, err
	}

	created, err := svc.accounts.FindByID(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountNotCreated, err)
	}

	log.Info("account registered", zap.String("account_id", string(created.ID)))
	return created.Sanitized(), nil
}

// save runs the pre-save password step and writes a new account.
func (svc *service) save(ctx context.Context, acc *Account) error {
	if err := acc.hashPendingPassword(svc.hasher); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := svc.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, ErrExistingAccount) {
			return err
		}
		return fmt.Errorf("error saving account: %w", err)
	}
	return nil
}

func (svc *service) verifyNotInUse(ctx context.Context, username, email string) error {
	_, err := svc.accounts.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return ErrExistingAccount
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return fmt.Errorf("check existing account: %w", err)
	}
}

func (svc *service) Login(ctx context.Context, r LoginRequest) (_ *Session, err error) {
	r.Username = normalizeIdentifier(r.Username)
	r.Email = normalizeIdentifier(r.Email)

	log := svc.log.With(zap.String("username", r.Username), zap.String("email", r.Email))
	defer func() {
		if err != nil {
			log.Warn("login failed", zap.Error(err))
		}
	}()

	if err := validateRequest(r, ErrMissingCredentials); err != nil {
		return nil, err
	}

	acc, err := svc.accounts.FindByUsernameOrEmail(ctx, r.Username, r.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !svc.hasher.Verify(r.Password, acc.Password) {
		return nil, ErrInvalidCredentials
	}

	s, err := svc.startSession(ctx, acc)
	if err != nil {
		return nil, err
	}

	log.Info("logged in", zap.String("account_id", string(acc.ID)))
	return s, nil
}

func (svc *service) Logout(ctx context.Context, id ID) error {
	if err := svc.accounts.SetRefreshToken(ctx, id, ""); err != nil {
		svc.log.Warn("logout failed", zap.String("account_id", string(id)), zap.Error(err))
		return fmt.Errorf("clear refresh token: %w", err)
	}
	svc.log.Info("logged out", zap.String("account_id", string(id)))
	return nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the one last persisted for the account; it is rotated on success.
func (svc *service) Refresh(ctx context.Context, refreshToken string) (_ *Session, err error) {
	defer func() {
		if err != nil {
			svc.log.Warn("refresh failed", zap.Error(err))
		}
	}()

	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := svc.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	acc, err := svc.accounts.FindByID(ctx, ID(claims.AccountID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if acc.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(acc.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, fmt.Errorf("%w: refresh token is expired or used", ErrUnauthorized)
	}

	return svc.startSession(ctx, acc)
}

// Authenticate resolves an access token to its sanitized account. Every
// failure is ErrUnauthorized.
func (svc *service) Authenticate(ctx context.Context, accessToken string) (*Account, error) {
	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := svc.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	acc, err := svc.accounts.FindByID(ctx, ID(claims.AccountID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return acc.Sanitized(), nil
}

func (svc *service) startSession(ctx context.Context, acc *Account) (*Session, error) {
	pair, err := svc.tokens.IssuePair(acc)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if err := svc.accounts.SetRefreshToken(ctx, acc.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &Session{Account: acc.Sanitized(), Tokens: pair}, nil
}
