package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var testTokenConfig = TokenConfig{
	AccessSecret:  []byte("access-secret"),
	AccessTTL:     time.Hour,
	RefreshSecret: []byte("refresh-secret"),
	RefreshTTL:    30 * 24 * time.Hour,
}

// uploaderSpy stands in for the media host. Like the real uploader it
// removes the file it was given.
type uploaderSpy struct {
	mu       sync.Mutex
	failing  map[string]bool
	failAll  bool
	uploaded []string
}

func (u *uploaderSpy) Upload(_ context.Context, p string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	_ = os.Remove(p)
	if u.failAll || u.failing[p] {
		return "", errors.New("upload failed")
	}
	u.uploaded = append(u.uploaded, p)
	return "https://media.test/" + filepath.Base(p), nil
}

func (u *uploaderSpy) failOn(p string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failing == nil {
		u.failing = map[string]bool{}
	}
	u.failing[p] = true
}

type fixture struct {
	accounts Repository
	uploader *uploaderSpy
	tokens   *TokenIssuer
	hasher   BcryptHasher
	svc      Service
}

func newFixture() *fixture {
	f := &fixture{
		accounts: NewAccountRepository(),
		uploader: &uploaderSpy{},
		tokens:   NewTokenIssuer(testTokenConfig),
		hasher:   BcryptHasher{Cost: bcrypt.MinCost},
	}
	f.svc = NewService(f.accounts, f.hasher, f.tokens, f.uploader, zap.NewNop())
	return f
}

func stagedFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("\x89PNG\r\n\x1a\n"), 0o600))
	return p
}

func aliceRequest(t *testing.T) RegisterRequest {
	return RegisterRequest{
		Username:   "alice",
		Email:      "alice@x.com",
		FullName:   "Alice A",
		Password:   "secret123",
		AvatarPath: stagedFile(t, "avatar.png"),
	}
}
