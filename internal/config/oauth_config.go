package config

type OAuthConfig interface {
	GetScopes() []string
	GetOOBRedirectURI() string
	GetIssuerURL() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetScopes returns the scope set requested during authorization. The
// set is fixed: documents for content writes, drive.file for documents
// this app created, plus the OIDC identity scopes used to derive the
// operator identity.
func (OAuth) GetScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/documents",
		"https://www.googleapis.com/auth/drive.file",
		"openid",
		"email",
	}
}

// GetOOBRedirectURI is the fallback used when the credential file lists
// no redirect targets.
func (OAuth) GetOOBRedirectURI() string {
	return "urn:ietf:wg:oauth:2.0:oob"
}

func (OAuth) GetIssuerURL() string {
	return "https://accounts.google.com"
}
