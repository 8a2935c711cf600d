package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/folio-api/internal/models"
	"github.com/dimitrije/folio-api/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

type fakeOAuth struct {
	name  string
	info  *oauth.UserInfo
	err   error
	codes []string
}

func (f *fakeOAuth) Name() string { return f.name }

func (f *fakeOAuth) GetConsentURL(state string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (f *fakeOAuth) ExchangeCode(_ context.Context, code string) (*oauth.UserInfo, error) {
	f.codes = append(f.codes, code)
	return f.info, f.err
}

type failingDirectory struct{}

func (failingDirectory) Lookup(context.Context, string) (*models.AdminUser, error) {
	return nil, errors.New("connection refused")
}

func TestStaticDirectory(t *testing.T) {
	ctx := context.Background()
	dir := NewStaticDirectory(" Admin@Example.com ", "hash")

	admin, err := dir.Lookup(ctx, "admin@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = dir.Lookup(ctx, "someone@example.com")
	assert.ErrorIs(t, err, ErrUnknownAdmin)

	_, err = NewStaticDirectory("", "").Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrUnknownAdmin)
}

func TestChainDirectory(t *testing.T) {
	ctx := context.Background()
	chain := ChainDirectory{
		NewStaticDirectory("first@example.com", ""),
		NewStaticDirectory("second@example.com", ""),
	}

	admin, err := chain.Lookup(ctx, "second@example.com")
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", admin.Email)

	_, err = chain.Lookup(ctx, "third@example.com")
	assert.ErrorIs(t, err, ErrUnknownAdmin)

	_, err = ChainDirectory{failingDirectory{}}.Lookup(ctx, "x@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownAdmin)
}

func TestPasswordProvider_Verify(t *testing.T) {
	ctx := context.Background()
	provider := NewPasswordProvider(NewStaticDirectory("admin@example.com", testHash(t, "correct horse")))

	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{"valid", Credentials{Email: "Admin@example.com", Password: "correct horse"}, nil},
		{"wrong password", Credentials{Email: "admin@example.com", Password: "battery staple"}, ErrInvalidCredentials},
		{"unknown email", Credentials{Email: "nobody@example.com", Password: "correct horse"}, ErrInvalidCredentials},
		{"missing password", Credentials{Email: "admin@example.com"}, ErrInvalidCredentials},
		{"missing email", Credentials{Password: "correct horse"}, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := provider.Verify(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin@example.com", session.Email)
			assert.Equal(t, PasswordProviderName, session.Provider)
		})
	}
}

func TestPasswordProvider_NoHashMeansNoPasswordLogin(t *testing.T) {
	provider := NewPasswordProvider(NewStaticDirectory("admin@example.com", ""))

	_, err := provider.Verify(context.Background(), Credentials{Email: "admin@example.com", Password: "anything"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordProvider_DirectoryFailure(t *testing.T) {
	provider := NewPasswordProvider(failingDirectory{})

	_, err := provider.Verify(context.Background(), Credentials{Email: "a@b.c", Password: "secret12"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordProvider_GetRole(t *testing.T) {
	ctx := context.Background()
	provider := NewPasswordProvider(NewStaticDirectory("admin@example.com", "hash"))

	role, err := provider.GetRole(ctx, &Session{Email: "admin@example.com", Provider: PasswordProviderName})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = provider.GetRole(ctx, &Session{Email: "gone@example.com", Provider: PasswordProviderName})
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, role)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("long enough")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("long enough")))
}

func TestOAuthProvider_ConsentAndVerify(t *testing.T) {
	ctx := context.Background()
	gh := &fakeOAuth{name: "github", info: &oauth.UserInfo{Email: "Admin@Example.com", Name: "Admin", Provider: "github"}}
	provider := NewOAuthProvider(NewStaticDirectory("admin@example.com", ""), gh)

	url, state, err := provider.ConsentURL("github")
	require.NoError(t, err)
	assert.Contains(t, url, state)

	session, err := provider.Verify(ctx, Credentials{Provider: "github", Code: "abc", State: state})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", session.Email)
	assert.Equal(t, "github", session.Provider)
	assert.Equal(t, []string{"abc"}, gh.codes)

	role, err := provider.GetRole(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	// states are single use
	_, err = provider.Verify(ctx, Credentials{Provider: "github", Code: "abc", State: state})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOAuthProvider_RejectsBadStates(t *testing.T) {
	ctx := context.Background()
	gh := &fakeOAuth{name: "github", info: &oauth.UserInfo{Email: "a@example.com"}}
	google := &fakeOAuth{name: "google", info: &oauth.UserInfo{Email: "a@example.com"}}
	provider := NewOAuthProvider(NewStaticDirectory("", ""), gh, google)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	t.Run("unknown state", func(t *testing.T) {
		_, err := provider.Verify(ctx, Credentials{Provider: "github", Code: "c", State: "made-up"})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("state issued for another provider", func(t *testing.T) {
		_, state, err := provider.ConsentURL("google")
		require.NoError(t, err)

		_, err = provider.Verify(ctx, Credentials{Provider: "github", Code: "c", State: state})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("expired state", func(t *testing.T) {
		_, state, err := provider.ConsentURL("github")
		require.NoError(t, err)

		now = now.Add(StateTTL + time.Second)
		_, err = provider.Verify(ctx, Credentials{Provider: "github", Code: "c", State: state})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, _, err := provider.ConsentURL("gitlab")
		assert.ErrorIs(t, err, ErrUnknownProvider)

		_, err = provider.Verify(ctx, Credentials{Provider: "gitlab", Code: "c", State: "s"})
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})

	assert.Empty(t, gh.codes, "no code may be exchanged without a valid state")
}

func TestOAuthProvider_ExchangeFailure(t *testing.T) {
	gh := &fakeOAuth{name: "github", err: oauth.ErrNoEmail}
	provider := NewOAuthProvider(NewStaticDirectory("", ""), gh)

	_, state, err := provider.ConsentURL("github")
	require.NoError(t, err)

	_, err = provider.Verify(context.Background(), Credentials{Provider: "github", Code: "c", State: state})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOAuthProvider_NonAdminIsViewer(t *testing.T) {
	provider := NewOAuthProvider(NewStaticDirectory("admin@example.com", ""))

	role, err := provider.GetRole(context.Background(), &Session{Email: "fan@example.com", Provider: "github"})

	require.NoError(t, err)
	assert.Equal(t, RoleViewer, role)
}

func TestMux(t *testing.T) {
	ctx := context.Background()
	dir := NewStaticDirectory("admin@example.com", testHash(t, "password1"))
	gh := &fakeOAuth{name: "github", info: &oauth.UserInfo{Email: "admin@example.com"}}
	oauthProvider := NewOAuthProvider(dir, gh)
	mux := &Mux{Password: NewPasswordProvider(dir), OAuth: oauthProvider}

	session, err := mux.Verify(ctx, Credentials{Email: "admin@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, PasswordProviderName, session.Provider)

	_, state, err := oauthProvider.ConsentURL("github")
	require.NoError(t, err)
	session, err = mux.Verify(ctx, Credentials{Provider: "github", Code: "c", State: state})
	require.NoError(t, err)
	assert.Equal(t, "github", session.Provider)

	role, err := mux.GetRole(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = (&Mux{Password: NewPasswordProvider(dir)}).Verify(ctx, Credentials{Provider: "github"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
