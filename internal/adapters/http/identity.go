package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/hernanharco/authcenter-backend/internal/application"
	"github.com/hernanharco/authcenter-backend/internal/domain"
)

// TokenExtractor returns the session token a request carries on one channel.
type TokenExtractor func(r *http.Request) (string, bool)

// CookieExtractor reads the token from the named cookie.
func CookieExtractor(name string) TokenExtractor {
	return func(r *http.Request) (string, bool) {
		cookie, err := r.Cookie(name)
		if err != nil {
			return "", false
		}
		token := strings.TrimSpace(cookie.Value)
		return token, token != ""
	}
}

// BearerExtractor reads the token from an Authorization: Bearer header.
func BearerExtractor(r *http.Request) (string, bool) {
	token, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return "", false
	}
	return token, true
}

// extractToken tries each extractor in order; the first hit wins.
func extractToken(r *http.Request, extractors []TokenExtractor) (string, bool) {
	for _, extract := range extractors {
		if token, ok := extract(r); ok {
			return token, true
		}
	}
	return "", false
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r, h.extractors)
		if !ok {
			h.writeMappedError(r.Context(), w, "authenticate", domain.ErrUnauthenticated)
			return
		}

		account, err := h.service.ResolveIdentity(r.Context(), token)
		if err != nil {
			h.writeMappedError(r.Context(), w, "authenticate", err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyAccount, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole must run after authMiddleware.
func (h *Handler) requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := accountFromContext(r.Context())
			if !ok {
				h.writeMappedError(r.Context(), w, "authorize", domain.ErrUnauthenticated)
				return
			}
			if err := application.RequireRole(account, roles...); err != nil {
				h.writeMappedError(r.Context(), w, "authorize", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accountFromContext(ctx context.Context) (domain.Account, bool) {
	account, ok := ctx.Value(ctxKeyAccount).(domain.Account)
	return account, ok
}
