package auth

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookiePolicy holds the attributes shared by both session cookies. Setting
// and clearing use the same attributes, otherwise browsers keep the cookie.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
	now      func() time.Time
}

// NewCookiePolicy returns Secure+SameSite=None in production and
// SameSite=Lax over plain http otherwise.
func NewCookiePolicy(production bool) CookiePolicy {
	if production {
		return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode, now: time.Now}
	}
	return CookiePolicy{Secure: false, SameSite: http.SameSiteLaxMode, now: time.Now}
}

func (p CookiePolicy) setSession(w http.ResponseWriter, pair TokenPair) {
	http.SetCookie(w, p.cookie(AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, p.cookie(RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt))
}

func (p CookiePolicy) clearSession(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := p.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (p CookiePolicy) cookie(name, value string, expires time.Time) *http.Cookie {
	now := time.Now
	if p.now != nil {
		now = p.now
	}

	maxAge := int(expires.Sub(now()) / time.Second)
	if maxAge <= 0 {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}
