package token

import (
	"context"

	"github.com/bishnubista/vibe-logger/credentials"
	"github.com/bishnubista/vibe-logger/internal/utils"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Exchanger performs the remote token-endpoint round trips. The manager
// owns when to call it; implementations own how. The production
// implementation is backed by golang.org/x/oauth2.
type Exchanger interface {
	// Exchange performs the one-time authorization-code exchange.
	Exchange(ctx context.Context, code string) (*credentials.TokenSet, error)

	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*credentials.TokenSet, error)
}

type oauthExchanger struct {
	cfg *oauth2.Config
}

var _ Exchanger = (*oauthExchanger)(nil)

func newOAuthExchanger(cfg *oauth2.Config) *oauthExchanger {
	return &oauthExchanger{cfg: cfg}
}

func (e *oauthExchanger) Exchange(ctx context.Context, code string) (*credentials.TokenSet, error) {
	tok, err := e.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "[oauthExchanger.Exchange]")
	}
	return tokenSetFromOAuth(tok), nil
}

func (e *oauthExchanger) Refresh(ctx context.Context, refreshToken string) (*credentials.TokenSet, error) {
	source := e.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := source.Token()
	if err != nil {
		return nil, errors.Wrap(err, "[oauthExchanger.Refresh]")
	}
	return tokenSetFromOAuth(tok), nil
}

func tokenSetFromOAuth(tok *oauth2.Token) *credentials.TokenSet {
	ts := &credentials.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		ts.ExpiryDate = utils.Ptr(tok.Expiry.UnixMilli())
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		ts.IDToken = idToken
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		ts.Scope = scope
	}
	return ts
}
