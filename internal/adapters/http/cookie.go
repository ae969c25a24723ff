package http

import (
	"net/http"
	"time"
)

const sessionCookieName = "access_token"

// CookiePolicy decides the attributes of the session cookie.
type CookiePolicy struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// NewCookiePolicy relaxes the cross-site attribute only in production, where
// the frontend is hosted separately and the cookie must be Secure.
func NewCookiePolicy(production bool) CookiePolicy {
	policy := CookiePolicy{
		Name:     sessionCookieName,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	}
	if production {
		policy.Secure = true
		policy.SameSite = http.SameSiteNoneMode
	}
	return policy
}

func (p CookiePolicy) set(w http.ResponseWriter, token string, ttl time.Duration, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     p.Path,
		Expires:  expiresAt,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	})
}

// clear expires the cookie with the same attributes it was set with.
func (p CookiePolicy) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     p.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	})
}
