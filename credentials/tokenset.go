package credentials

import "time"

// TokenSet is the bearer access/refresh token pair and its expiry.
// Replaced wholesale on refresh or exchange, never mutated field by
// field. ExpiryDate is epoch milliseconds; absence means the token
// must be treated as expired.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiryDate   *int64 `json:"expiry_date,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// Expiry returns the absolute expiry instant and whether one is known.
func (ts *TokenSet) Expiry() (time.Time, bool) {
	if ts.ExpiryDate == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*ts.ExpiryDate), true
}

// HasRefreshToken reports whether silent background refresh is possible.
func (ts *TokenSet) HasRefreshToken() bool {
	return ts != nil && ts.RefreshToken != ""
}
