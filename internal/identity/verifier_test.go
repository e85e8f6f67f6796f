package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type testKeys struct {
	private *rsa.PrivateKey
	pem     string
}

func newTestKeys(t *testing.T) testKeys {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return testKeys{private: key, pem: string(block)}
}

func (k testKeys) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(k.private)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": "user_2abc",
		"azp": "http://localhost",
		"sid": "sess_1",
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	}
}

func TestVerifyToken(t *testing.T) {
	keys := newTestKeys(t)
	other := newTestKeys(t)

	verifier, err := NewVerifier(keys.pem, []string{"https://example.com", "http://localhost/"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	foreignParty := validClaims()
	foreignParty["azp"] = "https://evil.example.org"

	noParty := validClaims()
	delete(noParty, "azp")

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	tests := []struct {
		name     string
		token    string
		signedIn bool
		subject  string
	}{
		{name: "valid", token: keys.sign(t, validClaims()), signedIn: true, subject: "user_2abc"},
		{name: "no azp claim", token: keys.sign(t, noParty), signedIn: true, subject: "user_2abc"},
		{name: "expired", token: keys.sign(t, expired)},
		{name: "missing exp", token: keys.sign(t, noExpiry)},
		{name: "foreign party", token: keys.sign(t, foreignParty)},
		{name: "wrong key", token: other.sign(t, validClaims())},
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := verifier.VerifyToken(tt.token)
			if state.SignedIn != tt.signedIn {
				t.Fatalf("SignedIn = %v want %v (reason %q)", state.SignedIn, tt.signedIn, state.Reason)
			}
			if state.Subject != tt.subject {
				t.Fatalf("Subject = %q want %q", state.Subject, tt.subject)
			}
			if !state.SignedIn && state.Reason == "" {
				t.Fatalf("failed verification should carry a reason")
			}
		})
	}
}

func TestVerifyTokenRejectsHS256(t *testing.T) {
	keys := newTestKeys(t)
	verifier, err := NewVerifier(keys.pem, []string{"http://localhost"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	signed, err := token.SignedString([]byte("shared"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if state := verifier.VerifyToken(signed); state.SignedIn {
		t.Fatalf("HS256 token must not verify")
	}
}

func TestVerifyRequestCredentialSources(t *testing.T) {
	keys := newTestKeys(t)
	verifier, err := NewVerifier(strings.ReplaceAll(keys.pem, "\n", `\n`), []string{"http://localhost"})
	if err != nil {
		t.Fatalf("new verifier from escaped pem: %v", err)
	}
	token := keys.sign(t, validClaims())

	bearer := httptest.NewRequest(http.MethodGet, "/api/userId", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)
	if state := verifier.Verify(bearer); !state.SignedIn {
		t.Fatalf("bearer credential rejected: %s", state.Reason)
	}

	cookie := httptest.NewRequest(http.MethodGet, "/api/userId", nil)
	cookie.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	if state := verifier.Verify(cookie); !state.SignedIn {
		t.Fatalf("session cookie rejected: %s", state.Reason)
	}

	malformed := httptest.NewRequest(http.MethodGet, "/api/userId", nil)
	malformed.Header.Set("Authorization", "Token "+token)
	if state := verifier.Verify(malformed); state.SignedIn {
		t.Fatalf("non-bearer scheme accepted")
	}

	none := httptest.NewRequest(http.MethodGet, "/api/userId", nil)
	if state := verifier.Verify(none); state.SignedIn || state.Reason != "no credential" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestOnboardingFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "empty", raw: "", want: false},
		{name: "null", raw: "null", want: false},
		{name: "set", raw: `{"onboardingComplete":true,"plan":"free"}`, want: true},
		{name: "cleared", raw: `{"onboardingComplete":false}`, want: false},
		{name: "wrong type", raw: `{"onboardingComplete":"yes"}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := onboardingFromMetadata([]byte(tt.raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}
