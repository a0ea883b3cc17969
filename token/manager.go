// Package token owns the authentication state machine: expiry
// detection, refresh, and the one-time authorization-code exchange.
package token

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bishnubista/vibe-logger/credentials"
	"github.com/bishnubista/vibe-logger/internal/config"
	apperrors "github.com/bishnubista/vibe-logger/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// State is the manager's position in the authentication lifecycle.
type State int

const (
	StateUnauthenticated State = iota // no access token at all
	StateAuthenticated                // access token present and not expired
	StateExpired                      // access token present but past (or missing) expiry
)

// Manager drives the token lifecycle over a credential store. A single
// mutex serializes every state transition, so concurrent callers that
// find an expired token coalesce onto one refresh round trip: whoever
// wins the lock refreshes, the rest see a fresh token and skip it.
type Manager struct {
	mu        sync.Mutex
	store     *credentials.Store
	oauthCfg  config.OAuthConfig
	cred      *credentials.Credential
	authCfg   *oauth2.Config
	token     *credentials.TokenSet
	exchanger Exchanger
	nowTime   func() time.Time
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithExchanger overrides the token-endpoint client (primarily for testing)
func WithExchanger(e Exchanger) Option {
	return func(m *Manager) {
		m.exchanger = e
	}
}

// New creates a manager. Call Initialize before anything else.
func New(store *credentials.Store, oauthCfg config.OAuthConfig, options ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[token.New] credential store is required")
	}
	if oauthCfg == nil {
		return nil, errors.New("[token.New] oauth config is required")
	}

	m := &Manager{
		store:    store,
		oauthCfg: oauthCfg,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Initialize loads the client credential, builds the authorization
// context, and loads any persisted token set. A stored token that is
// already expired is refreshed here, synchronously, so a caller that
// needs re-authentication finds out at startup rather than
// mid-operation.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.store.Load()
	if err != nil {
		return errors.Wrap(err, "[Manager.Initialize]")
	}
	m.cred = cred

	redirectURI := cred.RedirectURI()
	if redirectURI == "" {
		redirectURI = m.oauthCfg.GetOOBRedirectURI()
	}
	m.authCfg = &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       m.oauthCfg.GetScopes(),
	}
	if m.exchanger == nil {
		m.exchanger = newOAuthExchanger(m.authCfg)
	}

	ts, err := m.store.LoadToken()
	if err != nil {
		return errors.Wrap(err, "[Manager.Initialize]")
	}
	m.token = ts

	if ts != nil && Expired(ts, m.nowTime()) {
		if err := m.refreshLocked(ctx); err != nil {
			return errors.Wrap(err, "[Manager.Initialize] stored token expired")
		}
	}
	return nil
}

// Expired reports whether a token set must be considered expired. A
// missing expiry is never trusted optimistically: no expiry means
// expired. The boundary instant itself counts as expired.
func Expired(ts *credentials.TokenSet, now time.Time) bool {
	if ts == nil || ts.AccessToken == "" {
		return true
	}
	expiry, ok := ts.Expiry()
	if !ok {
		return true
	}
	return !now.Before(expiry)
}

// IsExpired applies Expired to the manager's clock.
func (m *Manager) IsExpired(ts *credentials.TokenSet) bool {
	return Expired(ts, m.nowTime())
}

// IsAuthenticated is the pure, non-failing check callers use to decide
// whether to surface an authorization URL instead of attempting an
// operation.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != nil && m.token.AccessToken != "" && !Expired(m.token, m.nowTime())
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil || m.token.AccessToken == "" {
		return StateUnauthenticated
	}
	if Expired(m.token, m.nowTime()) {
		return StateExpired
	}
	return StateAuthenticated
}

// ValidCredential returns a usable access token, transparently
// refreshing first when the current one is expired. With no access
// token at all it fails with ErrNotAuthenticated without any network
// call: the caller must drive the authorization-code flow first.
func (m *Manager) ValidCredential(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil || m.token.AccessToken == "" {
		return "", errors.Wrap(apperrors.ErrNotAuthenticated, "[Manager.ValidCredential]")
	}
	if Expired(m.token, m.nowTime()) {
		if err := m.refreshLocked(ctx); err != nil {
			return "", errors.Wrap(err, "[Manager.ValidCredential]")
		}
	}
	return m.token.AccessToken, nil
}

// Refresh exchanges the refresh token for a new token set and persists
// it. A single attempt, never retried: a failure means the human must
// re-run the authorization flow.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) error {
	if m.exchanger == nil {
		return errors.New("[Manager.refresh] not initialized")
	}
	if !m.token.HasRefreshToken() {
		return errors.Wrap(apperrors.ErrRefreshFailed, "no refresh token")
	}

	fresh, err := m.exchanger.Refresh(ctx, m.token.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed")
		return errors.Wrap(apperrors.ErrRefreshFailed, err.Error())
	}

	// The token endpoint omits fields it did not rotate.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = m.token.RefreshToken
	}
	if fresh.IDToken == "" {
		fresh.IDToken = m.token.IDToken
	}
	if fresh.Scope == "" {
		fresh.Scope = m.token.Scope
	}

	m.token = fresh
	if err := m.store.SaveToken(fresh); err != nil {
		return errors.Wrap(err, "[Manager.refresh] persist token")
	}

	log.Info().Msg("access token refreshed")
	return nil
}

// ExchangeAuthorizationCode performs the one-time exchange of a
// user-granted code for the first token set and persists it.
func (m *Manager) ExchangeAuthorizationCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.Wrap(apperrors.ErrInvalidCode, "[Manager.ExchangeAuthorizationCode] empty code")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exchanger == nil {
		return errors.New("[Manager.ExchangeAuthorizationCode] not initialized")
	}

	ts, err := m.exchanger.Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(apperrors.ErrExchangeFailed, err.Error())
	}

	m.token = ts
	if err := m.store.SaveToken(ts); err != nil {
		return errors.Wrap(err, "[Manager.ExchangeAuthorizationCode] persist token")
	}

	log.Info().Msg("authorization code exchanged")
	return nil
}

// AuthorizationURL builds the consent URL. Offline access is always
// requested and the consent prompt forced: without both, Google only
// issues a refresh token on the very first grant and silent background
// refresh becomes impossible after a reset.
func (m *Manager) AuthorizationURL() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authCfg == nil {
		return "", errors.New("[Manager.AuthorizationURL] not initialized")
	}
	return m.authCfg.AuthCodeURL("", oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Token returns the current in-memory token set, or nil.
func (m *Manager) Token() *credentials.TokenSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}
