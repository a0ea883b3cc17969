package credentials

import (
	"encoding/json"

	apperrors "github.com/bishnubista/vibe-logger/internal/errors"
	"github.com/pkg/errors"
)

// Credential is the OAuth client identity. Immutable once loaded; it is
// never transmitted except during the authorization handshake.
type Credential struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
}

// credentialFile accepts both the flat object and the nested wrapper
// that Google's console downloads ({"installed": {...}}).
type credentialFile struct {
	Installed *Credential `json:"installed,omitempty"`
	Web       *Credential `json:"web,omitempty"`
	Credential
}

// ParseCredential decodes a credential file body and validates the
// required fields.
func ParseCredential(data []byte) (*Credential, error) {
	var file credentialFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(apperrors.ErrCredentialMalformed, err.Error())
	}

	cred := file.Credential
	if file.Installed != nil {
		cred = *file.Installed
	} else if file.Web != nil {
		cred = *file.Web
	}

	if err := cred.validate(); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (c Credential) validate() error {
	if c.ClientID == "" {
		return errors.Wrap(apperrors.ErrCredentialMalformed, "missing client_id")
	}
	if c.ClientSecret == "" {
		return errors.Wrap(apperrors.ErrCredentialMalformed, "missing client_secret")
	}
	if len(c.RedirectURIs) == 0 {
		return errors.Wrap(apperrors.ErrCredentialMalformed, "missing redirect_uris")
	}
	return nil
}

// RedirectURI returns the first configured redirect target.
func (c Credential) RedirectURI() string {
	if len(c.RedirectURIs) == 0 {
		return ""
	}
	return c.RedirectURIs[0]
}
