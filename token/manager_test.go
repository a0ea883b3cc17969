package token_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bishnubista/vibe-logger/credentials"
	"github.com/bishnubista/vibe-logger/internal/config"
	apperrors "github.com/bishnubista/vibe-logger/internal/errors"
	"github.com/bishnubista/vibe-logger/internal/utils"
	"github.com/bishnubista/vibe-logger/token"
	"github.com/bishnubista/vibe-logger/token/exchangerfake"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testCredentialJSON = `{
	"installed": {
		"client_id": "client-1",
		"client_secret": "secret-1",
		"redirect_uris": ["urn:ietf:wg:oauth:2.0:oob"]
	}
}`

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     *credentials.Store
	exchanger *exchangerfake.FakeExchanger
	manager   *token.Manager
}

func newFixture(t *testing.T, stored *credentials.TokenSet) *fixture {
	t.Helper()

	dir := t.TempDir()
	credPath := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(credPath, []byte(testCredentialJSON), 0o600))

	store := credentials.NewStore(credPath, filepath.Join(dir, "token.json"))
	if stored != nil {
		require.NoError(t, store.SaveToken(stored))
	}

	exchanger := exchangerfake.NewFakeExchanger()
	manager, err := token.New(store, config.OAuth{},
		token.WithExchanger(exchanger),
		token.WithNowTime(func() time.Time { return testNow }),
	)
	require.NoError(t, err)

	return &fixture{store: store, exchanger: exchanger, manager: manager}
}

// expiresAt gives an epoch-millis pointer offset from the test clock.
func expiresAt(offset time.Duration) *int64 {
	return utils.Ptr(testNow.Add(offset).UnixMilli())
}

func freshTokenSet() *credentials.TokenSet {
	return &credentials.TokenSet{
		AccessToken:  "access-fresh",
		RefreshToken: "refresh-rotated",
		TokenType:    "Bearer",
		ExpiryDate:   expiresAt(time.Hour),
	}
}

func unsignedIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}

func TestExpired(t *testing.T) {
	t.Run("nil token set", func(t *testing.T) {
		require.True(t, token.Expired(nil, testNow))
	})

	t.Run("missing expiry is never trusted", func(t *testing.T) {
		ts := &credentials.TokenSet{AccessToken: "a"}
		require.True(t, token.Expired(ts, testNow))
	})

	t.Run("boundary instant counts as expired", func(t *testing.T) {
		ts := &credentials.TokenSet{AccessToken: "a", ExpiryDate: expiresAt(0)}
		require.True(t, token.Expired(ts, testNow))
	})

	t.Run("future expiry is valid", func(t *testing.T) {
		ts := &credentials.TokenSet{AccessToken: "a", ExpiryDate: expiresAt(time.Minute)}
		require.False(t, token.Expired(ts, testNow))
	})

	t.Run("past expiry", func(t *testing.T) {
		ts := &credentials.TokenSet{AccessToken: "a", ExpiryDate: expiresAt(-time.Minute)}
		require.True(t, token.Expired(ts, testNow))
	})
}

func TestManager_Initialize(t *testing.T) {
	t.Run("missing credential file", func(t *testing.T) {
		dir := t.TempDir()
		store := credentials.NewStore(filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json"))
		manager, err := token.New(store, config.OAuth{})
		require.NoError(t, err)

		err = manager.Initialize(context.Background())
		require.ErrorIs(t, err, apperrors.ErrCredentialNotFound)
	})

	t.Run("no stored token", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.manager.Initialize(context.Background()))
		require.Equal(t, token.StateUnauthenticated, f.manager.State())
		require.False(t, f.manager.IsAuthenticated())
		require.Zero(t, f.exchanger.RefreshCalls)
	})

	t.Run("valid stored token needs no refresh", func(t *testing.T) {
		f := newFixture(t, &credentials.TokenSet{
			AccessToken: "access-1",
			ExpiryDate:  expiresAt(time.Hour),
		})
		require.NoError(t, f.manager.Initialize(context.Background()))
		require.Equal(t, token.StateAuthenticated, f.manager.State())
		require.True(t, f.manager.IsAuthenticated())
		require.Zero(t, f.exchanger.RefreshCalls)
	})

	t.Run("expired stored token is refreshed before Initialize returns", func(t *testing.T) {
		f := newFixture(t, &credentials.TokenSet{
			AccessToken:  "access-stale",
			RefreshToken: "refresh-1",
			ExpiryDate:   expiresAt(-time.Hour),
		})
		f.exchanger.RefreshResult = freshTokenSet()

		require.NoError(t, f.manager.Initialize(context.Background()))
		require.Equal(t, 1, f.exchanger.RefreshCalls)
		require.Equal(t, "refresh-1", f.exchanger.LastRefresh)
		require.True(t, f.manager.IsAuthenticated())

		// The new set was persisted, not just held in memory.
		persisted, err := f.store.LoadToken()
		require.NoError(t, err)
		require.Equal(t, "access-fresh", persisted.AccessToken)
	})

	t.Run("expired stored token without refresh token fails at startup", func(t *testing.T) {
		f := newFixture(t, &credentials.TokenSet{
			AccessToken: "access-stale",
			ExpiryDate:  expiresAt(-time.Hour),
		})

		err := f.manager.Initialize(context.Background())
		require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
	})
}

func TestManager_ValidCredential(t *testing.T) {
	t.Run("no token at all fails without a network call", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.manager.Initialize(context.Background()))

		_, err := f.manager.ValidCredential(context.Background())
		require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
		require.Zero(t, f.exchanger.RefreshCalls)
	})

	t.Run("valid token passes through", func(t *testing.T) {
		f := newFixture(t, &credentials.TokenSet{
			AccessToken: "access-1",
			ExpiryDate:  expiresAt(time.Hour),
		})
		require.NoError(t, f.manager.Initialize(context.Background()))

		cred, err := f.manager.ValidCredential(context.Background())
		require.NoError(t, err)
		require.Equal(t, "access-1", cred)
		require.Zero(t, f.exchanger.RefreshCalls)
	})

	t.Run("expired token triggers exactly one refresh", func(t *testing.T) {
		f := newFixture(t, &credentials.TokenSet{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiryDate:   expiresAt(time.Hour),
		})
		require.NoError(t, f.manager.Initialize(context.Background()))

		// Expire the in-memory token five minutes in the past.
		f.manager.Token().ExpiryDate = expiresAt(-5 * time.Minute)
		f.exchanger.RefreshResult = freshTokenSet()

		cred, err := f.manager.ValidCredential(context.Background())
		require.NoError(t, err)
		require.Equal(t, "access-fresh", cred)
		require.Equal(t, 1, f.exchanger.RefreshCalls)

		expiry, ok := f.manager.Token().Expiry()
		require.True(t, ok)
		require.True(t, expiry.After(testNow))
	})
}

func TestManager_Refresh(t *testing.T) {
	t.Run("remote failure is a single typed failure", func(t *testing.T) {
		f := newFixture(t, &credentials.TokenSet{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiryDate:   expiresAt(time.Hour),
		})
		require.NoError(t, f.manager.Initialize(context.Background()))
		f.exchanger.RefreshErr = errors.New("invalid_grant")

		err := f.manager.Refresh(context.Background())
		require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
		require.Equal(t, 1, f.exchanger.RefreshCalls)

		// Failed refresh leaves both memory and disk untouched.
		require.Equal(t, "access-1", f.manager.Token().AccessToken)
		persisted, err := f.store.LoadToken()
		require.NoError(t, err)
		require.Equal(t, "access-1", persisted.AccessToken)
	})

	t.Run("fields the endpoint omitted are carried forward", func(t *testing.T) {
		f := newFixture(t, &credentials.TokenSet{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Scope:        "documents",
			IDToken:      "id-1",
			ExpiryDate:   expiresAt(time.Hour),
		})
		require.NoError(t, f.manager.Initialize(context.Background()))
		f.exchanger.RefreshResult = &credentials.TokenSet{
			AccessToken: "access-2",
			ExpiryDate:  expiresAt(time.Hour),
		}

		require.NoError(t, f.manager.Refresh(context.Background()))
		ts := f.manager.Token()
		require.Equal(t, "refresh-1", ts.RefreshToken)
		require.Equal(t, "id-1", ts.IDToken)
		require.Equal(t, "documents", ts.Scope)
	})
}

func TestManager_ExchangeAuthorizationCode(t *testing.T) {
	t.Run("empty code is rejected locally", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.manager.Initialize(context.Background()))

		err := f.manager.ExchangeAuthorizationCode(context.Background(), "   ")
		require.ErrorIs(t, err, apperrors.ErrInvalidCode)
		require.Zero(t, f.exchanger.ExchangeCalls)
	})

	t.Run("remote rejection", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.manager.Initialize(context.Background()))
		f.exchanger.ExchangeErr = errors.New("invalid_grant")

		err := f.manager.ExchangeAuthorizationCode(context.Background(), "code-1")
		require.ErrorIs(t, err, apperrors.ErrExchangeFailed)
	})

	t.Run("success persists the token set", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.manager.Initialize(context.Background()))
		f.exchanger.ExchangeResult = freshTokenSet()

		require.NoError(t, f.manager.ExchangeAuthorizationCode(context.Background(), "code-1"))
		require.Equal(t, "code-1", f.exchanger.LastCode)
		require.True(t, f.manager.IsAuthenticated())

		persisted, err := f.store.LoadToken()
		require.NoError(t, err)
		require.Equal(t, "access-fresh", persisted.AccessToken)
	})
}

func TestManager_AuthorizationURL(t *testing.T) {
	t.Run("before Initialize", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.manager.AuthorizationURL()
		require.Error(t, err)
	})

	t.Run("always requests offline access and forced consent", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.manager.Initialize(context.Background()))

		url, err := f.manager.AuthorizationURL()
		require.NoError(t, err)
		require.Contains(t, url, "access_type=offline")
		require.Contains(t, url, "approval_prompt=force")
		require.Contains(t, url, "client_id=client-1")

		// Deterministic for a fixed credential and scope set.
		again, err := f.manager.AuthorizationURL()
		require.NoError(t, err)
		require.Equal(t, url, again)
	})
}

func TestManager_OperatorIdentity(t *testing.T) {
	t.Run("email claim from the stored id token", func(t *testing.T) {
		idToken := unsignedIDToken(t, map[string]any{"email": "jane.doe@example.com"})
		f := newFixture(t, &credentials.TokenSet{
			AccessToken: "access-1",
			IDToken:     idToken,
			ExpiryDate:  expiresAt(time.Hour),
		})
		require.NoError(t, f.manager.Initialize(context.Background()))
		require.Equal(t, "jane.doe@example.com", f.manager.OperatorIdentity())
	})

	t.Run("no id token", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.manager.Initialize(context.Background()))
		require.Empty(t, f.manager.OperatorIdentity())
	})
}
