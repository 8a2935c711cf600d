package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/folio-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func newTestGoogleProvider(tokenURL, userInfoURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  tokenURL + "/authorize",
				TokenURL: tokenURL + "/token",
			},
		},
		userInfoURL: userInfoURL,
	}
}

func TestGoogleProvider_Name(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{})
	assert.Equal(t, "google", provider.Name())
}

func TestGoogleProvider_GetConsentURL(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost/callback",
	})

	url := provider.GetConsentURL("test-state")

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
}

func TestGoogleProvider_Scopes(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost/callback",
	})

	assert.Contains(t, provider.config.Scopes, "https://www.googleapis.com/auth/userinfo.email")
	assert.Contains(t, provider.config.Scopes, "https://www.googleapis.com/auth/userinfo.profile")
}

func TestGoogleProvider_Endpoint(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{})

	assert.Equal(t, google.Endpoint.AuthURL, provider.config.Endpoint.AuthURL)
	assert.Equal(t, google.Endpoint.TokenURL, provider.config.Endpoint.TokenURL)
}

func TestGoogleProvider_ExchangeCode(t *testing.T) {
	tokenServer := newTokenServer(t)

	tests := []struct {
		name      string
		body      string
		wantEmail string
		wantErr   error
	}{
		{
			name:      "verified email",
			body:      `{"id":"g-1","email":"artist@example.com","verified_email":true,"name":"Artist"}`,
			wantEmail: "artist@example.com",
		},
		{
			name:    "unverified email",
			body:    `{"id":"g-1","email":"artist@example.com","verified_email":false}`,
			wantErr: ErrNoEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer userInfo.Close()

			provider := newTestGoogleProvider(tokenServer.URL, userInfo.URL)

			info, err := provider.ExchangeCode(context.Background(), "code")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, info.Email)
			assert.Equal(t, "google", info.Provider)
		})
	}
}
