package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// OperatorIdentity derives the operator's identity from the stored ID
// token's email claim. The claim is read without signature verification:
// the token came out of our own token file and only feeds document
// naming, not authorization. Returns "" when no identity is available.
func (m *Manager) OperatorIdentity() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil || m.token.IDToken == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(m.token.IDToken, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}
