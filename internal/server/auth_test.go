package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthConfigFor(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	if got := AuthConfigFor(""); got.Enabled() {
		t.Errorf("no token: config = %+v, want disabled", got)
	}
	if got := AuthConfigFor("flag-token"); got.Token != "flag-token" || got.Source != TokenFromFlag {
		t.Errorf("flag token: config = %+v", got)
	}

	t.Setenv(TokenEnvVar, "env-token")
	if got := AuthConfigFor(""); got.Token != "env-token" || got.Source != TokenFromEnv {
		t.Errorf("env token: config = %+v", got)
	}
	if got := AuthConfigFor("flag-token"); got.Source != TokenFromFlag {
		t.Errorf("flag should win over env: config = %+v", got)
	}
}

func TestRequireToken(t *testing.T) {
	secret := AuthConfig{Token: "secret", Source: TokenFromFlag}

	tests := []struct {
		name       string
		config     AuthConfig
		authHeader string
		query      string
		wantAuth   bool
	}{
		{"open allows all", AuthConfig{}, "", "", true},
		{"valid token", secret, "Bearer secret", "", true},
		{"scheme is case insensitive", secret, "bearer secret", "", true},
		{"wrong token", secret, "Bearer nope", "", false},
		{"missing header", secret, "", "", false},
		{"basic scheme", secret, "Basic secret", "", false},
		{"empty bearer", secret, "Bearer ", "", false},
		{"query token", secret, "", "?token=secret", true},
		{"wrong query token", secret, "", "?token=nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			h := requireToken(tt.config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))
			req := httptest.NewRequest(http.MethodGet, "/v1/position"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if reached != tt.wantAuth {
				t.Fatalf("handler reached = %v, want %v", reached, tt.wantAuth)
			}
			if !tt.wantAuth {
				if rec.Code != http.StatusUnauthorized {
					t.Errorf("status = %d, want 401", rec.Code)
				}
				if got := rec.Header().Get("WWW-Authenticate"); got != `Bearer realm="folio"` {
					t.Errorf("WWW-Authenticate = %q", got)
				}
			}
		})
	}
}

func TestGeneratedAuthConfig(t *testing.T) {
	a, err := GeneratedAuthConfig()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GeneratedAuthConfig()
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Token) != 64 || a.Token == b.Token || a.Source != TokenGenerated {
		t.Fatalf("configs %+v and %+v", a, b)
	}
}
