package exchangerfake

import (
	"context"
	"sync"

	"github.com/bishnubista/vibe-logger/credentials"
	"github.com/bishnubista/vibe-logger/token"
	"github.com/pkg/errors"
)

var _ token.Exchanger = (*FakeExchanger)(nil)

// FakeExchanger is an in-memory token-endpoint stand-in for tests. Set
// the next result fields before driving the manager; call counts record
// how many network round trips the manager would have made.
type FakeExchanger struct {
	lock sync.Mutex

	ExchangeResult *credentials.TokenSet
	ExchangeErr    error
	ExchangeCalls  int
	LastCode       string

	RefreshResult *credentials.TokenSet
	RefreshErr    error
	RefreshCalls  int
	LastRefresh   string
}

func NewFakeExchanger() *FakeExchanger {
	return &FakeExchanger{}
}

func (f *FakeExchanger) Exchange(_ context.Context, code string) (*credentials.TokenSet, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.ExchangeCalls++
	f.LastCode = code
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	if f.ExchangeResult == nil {
		return nil, errors.New("no exchange result configured")
	}
	result := *f.ExchangeResult
	return &result, nil
}

func (f *FakeExchanger) Refresh(_ context.Context, refreshToken string) (*credentials.TokenSet, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.RefreshCalls++
	f.LastRefresh = refreshToken
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	if f.RefreshResult == nil {
		return nil, errors.New("no refresh result configured")
	}
	result := *f.RefreshResult
	return &result, nil
}
