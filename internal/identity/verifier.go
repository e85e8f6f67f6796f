package identity

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the same-origin transport Clerk uses for session tokens.
const SessionCookieName = "__session"

// State is the outcome of verifying one request credential.
type State struct {
	SignedIn bool
	Subject  string
	Claims   map[string]any
	// Reason explains a failed verification; for logs only.
	Reason string
}

// Verifier checks Clerk session tokens offline with the instance's PEM public key.
type Verifier struct {
	publicKey         *rsa.PublicKey
	authorizedParties []string
	leeway            time.Duration
}

// NewVerifier parses the PEM public key. Literal "\n" sequences are accepted
// so the key can live in a single-line environment variable.
func NewVerifier(publicKeyPEM string, authorizedParties []string) (*Verifier, error) {
	publicKeyPEM = strings.TrimSpace(strings.ReplaceAll(publicKeyPEM, `\n`, "\n"))
	if publicKeyPEM == "" {
		return nil, errors.New("public key pem is required")
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}

	parties := make([]string, 0, len(authorizedParties))
	for _, p := range authorizedParties {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			parties = append(parties, p)
		}
	}

	return &Verifier{
		publicKey:         publicKey,
		authorizedParties: parties,
		leeway:            5 * time.Second,
	}, nil
}

// Verify reads the bearer credential (or the session cookie) from r.
func (v *Verifier) Verify(r *http.Request) State {
	token, ok := credentialFromRequest(r)
	if !ok {
		return State{Reason: "no credential"}
	}
	return v.VerifyToken(token)
}

// VerifyToken validates a raw session token.
func (v *Verifier) VerifyToken(raw string) State {
	if strings.TrimSpace(raw) == "" {
		return State{Reason: "token string is empty"}
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return State{Reason: fmt.Sprintf("parse token: %v", err)}
	}
	if !token.Valid {
		return State{Reason: "invalid token"}
	}

	if azp, _ := claims["azp"].(string); azp != "" && !v.partyAllowed(azp) {
		return State{Reason: fmt.Sprintf("unauthorized party %q", azp)}
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return State{Reason: fmt.Sprintf("read subject: %v", err)}
	}

	return State{
		SignedIn: true,
		Subject:  subject,
		Claims:   claims,
	}
}

func (v *Verifier) partyAllowed(azp string) bool {
	return slices.Contains(v.authorizedParties, strings.TrimRight(azp, "/"))
}

func credentialFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}
