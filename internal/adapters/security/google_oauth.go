package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hernanharco/authcenter-backend/internal/ports"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuerURL = "https://accounts.google.com"
	googleJWKSURL   = "https://www.googleapis.com/oauth2/v3/certs"

	// postmessage is the redirect URI of the Google JS popup code flow.
	defaultGoogleRedirectURL = "postmessage"
	defaultOAuthTimeout      = 10 * time.Second
)

// GoogleOAuthConfig configures the Google authorization-code bridge.
// Endpoint, IssuerURL and KeySet default to Google's production values.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	Timeout      time.Duration

	Endpoint  oauth2.Endpoint
	IssuerURL string
	KeySet    oidc.KeySet
	Now       func() time.Time
}

// GoogleOAuthBridge exchanges an authorization code for a verified identity.
// The client secret never leaves this adapter.
type GoogleOAuthBridge struct {
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client
	timeout    time.Duration
}

func NewGoogleOAuthBridge(cfg GoogleOAuthConfig) (*GoogleOAuthBridge, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("google client id is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultOAuthTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	issuer := cfg.IssuerURL
	if issuer == "" {
		issuer = googleIssuerURL
	}
	keySet := cfg.KeySet
	if keySet == nil {
		keyCtx := oidc.ClientContext(context.Background(), httpClient)
		keySet = oidc.NewRemoteKeySet(keyCtx, googleJWKSURL)
	}
	redirectURL := cfg.RedirectURL
	if redirectURL == "" {
		redirectURL = defaultGoogleRedirectURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &GoogleOAuthBridge{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID: cfg.ClientID,
			Now:      cfg.Now,
		}),
		httpClient: httpClient,
		timeout:    timeout,
	}, nil
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
}

// Exchange trades code for tokens at Google's token endpoint and verifies the
// returned ID token's signature, issuer and audience. The whole call is
// bounded by the configured timeout.
func (b *GoogleOAuthBridge) Exchange(ctx context.Context, code string) (ports.ExternalIdentity, error) {
	if strings.TrimSpace(code) == "" {
		return ports.ExternalIdentity{}, errors.New("authorization code is required")
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)

	token, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || strings.TrimSpace(rawIDToken) == "" {
		return ports.ExternalIdentity{}, errors.New("id_token missing in token response")
	}

	idToken, err := b.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("verify id_token: %w", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("decode id_token claims: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return ports.ExternalIdentity{}, errors.New("id_token has no email")
	}
	verified := boolClaim(claims.EmailVerified)
	if !verified {
		return ports.ExternalIdentity{}, errors.New("google email is not verified")
	}

	return ports.ExternalIdentity{
		Provider:      "google",
		Subject:       idToken.Subject,
		Email:         email,
		EmailVerified: verified,
		Name:          strings.TrimSpace(claims.Name),
	}, nil
}

func boolClaim(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		default:
			return false
		}
	default:
		return false
	}
}
