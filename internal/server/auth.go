package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/wethinkt/go-folio/internal/tuilog"
)

// TokenEnvVar is read when read --listen is started without --token.
const TokenEnvVar = "FOLIO_TOKEN"

// TokenSource records where the API token came from. It is only logged.
type TokenSource string

const (
	TokenFromFlag  TokenSource = "flag"
	TokenFromEnv   TokenSource = "env"
	TokenGenerated TokenSource = "generated"
)

// AuthConfig guards the /v1 API. An empty Token leaves it open.
type AuthConfig struct {
	Token  string
	Source TokenSource
}

// Enabled reports whether requests must carry the token.
func (c AuthConfig) Enabled() bool { return c.Token != "" }

// AuthConfigFor resolves the token once at startup: the flag wins, then
// FOLIO_TOKEN, otherwise the API is open.
func AuthConfigFor(flagToken string) AuthConfig {
	if flagToken != "" {
		return AuthConfig{Token: flagToken, Source: TokenFromFlag}
	}
	if env := os.Getenv(TokenEnvVar); env != "" {
		return AuthConfig{Token: env, Source: TokenFromEnv}
	}
	return AuthConfig{}
}

// GeneratedAuthConfig returns a config with a fresh random token, used when
// the server listens beyond loopback and no token was given.
func GeneratedAuthConfig() (AuthConfig, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return AuthConfig{}, fmt.Errorf("generate token: %w", err)
	}
	return AuthConfig{Token: hex.EncodeToString(b), Source: TokenGenerated}, nil
}

var (
	errMissingToken = errors.New("missing Authorization header")
	errBadScheme    = errors.New("invalid Authorization header format")
)

// requestToken extracts the bearer token. Browsers that open the websocket
// by URL can pass ?token= instead of the header.
func requestToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		if q := r.URL.Query().Get("token"); q != "" {
			return q, nil
		}
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadScheme
	}
	return token, nil
}

// requireToken rejects requests without the configured token. It is a
// pass-through when auth is off.
func requireToken(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled() {
			return next
		}
		want := []byte(cfg.Token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, err := requestToken(r)
			if err == nil && subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				tuilog.Log.Info("requireToken: invalid token", "remote", r.RemoteAddr, "path", r.URL.Path)
				err = errors.New("invalid token")
			}
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="folio"`)
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
