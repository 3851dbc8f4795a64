package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/xid"
)

// Account is one registered user. Password and RefreshToken never leave the
// server: they are excluded from JSON and zeroed by Sanitized.
type Account struct {
	ID           ID        `bson:"_id" json:"_id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	FullName     string    `bson:"fullname" json:"fullName"`
	Avatar       string    `bson:"avatar" json:"avatar"`
	CoverImage   string    `bson:"coverimage" json:"coverImage"`
	WatchHistory []string  `bson:"watchhistory" json:"watchHistory"`
	Password     string    `bson:"password" json:"-"`
	RefreshToken string    `bson:"refreshtoken,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`

	// plaintext set by SetPassword and not yet hashed
	pendingPassword string
}

type ID string

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrMissingCredentials = errors.New("username or email and password are required")
	ErrAvatarRequired     = errors.New("avatar is required")
	ErrAvatarUpload       = errors.New("avatar upload failed")
	ErrExistingAccount    = errors.New("username or email in use")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAccountNotCreated  = errors.New("account not created")
	ErrUnhashedPassword   = errors.New("password not hashed before save")
)

// NewAccount returns an account with username and email normalized the way
// they are stored: trimmed and lowercase.
func NewAccount(username, email, fullName string) *Account {
	return &Account{
		Username:     normalizeIdentifier(username),
		Email:        normalizeIdentifier(email),
		FullName:     strings.TrimSpace(fullName),
		WatchHistory: []string{},
	}
}

func NewID() ID {
	return ID(xid.New().String())
}

func isValidID(id string) bool {
	if _, err := xid.FromString(id); err != nil {
		return false
	}
	return true
}

func normalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SetPassword records a new plaintext password. It is hashed by
// hashPendingPassword right before the account is written.
func (a *Account) SetPassword(plaintext string) {
	a.pendingPassword = plaintext
}

func (a *Account) hasPendingPassword() bool {
	return a.pendingPassword != ""
}

// hashPendingPassword is the pre-save step. It does nothing unless the password
// was changed since the last save, so an existing digest is never hashed again.
func (a *Account) hashPendingPassword(h PasswordHasher) error {
	if !a.hasPendingPassword() {
		return nil
	}

	hash, err := h.Hash(a.pendingPassword)
	if err != nil {
		return err
	}

	a.Password = hash
	a.pendingPassword = ""
	return nil
}

// Sanitized returns a copy without the password digest and refresh token.
func (a *Account) Sanitized() *Account {
	c := *a
	c.Password = ""
	c.RefreshToken = ""
	c.pendingPassword = ""
	if a.WatchHistory != nil {
		c.WatchHistory = append([]string{}, a.WatchHistory...)
	}
	return &c
}
