package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/xid"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

// AccessClaims identify the account on every authenticated request.
type AccessClaims struct {
	AccountID string `json:"_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FullName  string `json:"fullname"`
	jwt.StandardClaims
}

// RefreshClaims carry only the account id; they are good for nothing but
// minting a new pair.
type RefreshClaims struct {
	AccountID string `json:"id"`
	jwt.StandardClaims
}

// TokenPair holds both tokens with the exact expiry signed into each, so
// cookies can be made to expire together with their token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 tokens. Access and refresh tokens use
// different secrets, so one kind never verifies as the other.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

func (ti *TokenIssuer) IssuePair(acc *Account) (TokenPair, error) {
	access, accessExp, err := ti.IssueAccessToken(acc)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, refreshExp, err := ti.IssueRefreshToken(acc)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (ti *TokenIssuer) IssueAccessToken(acc *Account) (string, time.Time, error) {
	std, exp := ti.standardClaims(ti.cfg.AccessTTL)
	claims := AccessClaims{
		AccountID:      string(acc.ID),
		Email:          acc.Email,
		Username:       acc.Username,
		FullName:       acc.FullName,
		StandardClaims: std,
	}
	s, err := sign(claims, ti.cfg.AccessSecret)
	return s, exp, err
}

func (ti *TokenIssuer) IssueRefreshToken(acc *Account) (string, time.Time, error) {
	std, exp := ti.standardClaims(ti.cfg.RefreshTTL)
	s, err := sign(RefreshClaims{AccountID: string(acc.ID), StandardClaims: std}, ti.cfg.RefreshSecret)
	return s, exp, err
}

func (ti *TokenIssuer) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := verify(tokenString, claims, ti.cfg.AccessSecret); err != nil {
		return nil, err
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidToken)
	}
	return claims, nil
}

func (ti *TokenIssuer) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := verify(tokenString, claims, ti.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidToken)
	}
	return claims, nil
}

func (ti *TokenIssuer) standardClaims(ttl time.Duration) (jwt.StandardClaims, time.Time) {
	now := ti.now()
	exp := time.Unix(now.Add(ttl).Unix(), 0)
	// iat and exp have second resolution; the id keeps tokens issued within
	// the same second distinct
	return jwt.StandardClaims{Id: xid.New().String(), IssuedAt: now.Unix(), ExpiresAt: exp.Unix()}, exp
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

type expiring interface {
	jwt.Claims
	expiresAt() int64
}

func (c *AccessClaims) expiresAt() int64  { return c.ExpiresAt }
func (c *RefreshClaims) expiresAt() int64 { return c.ExpiresAt }

// verify checks signature, algorithm and expiry. Every failure is reported as
// ErrInvalidToken; the cause is kept only for logs.
func verify(tokenString string, claims expiring, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	if claims.expiresAt() == 0 {
		return fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	return nil
}
