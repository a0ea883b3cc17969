package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "github.com/bishnubista/vibe-logger/internal/errors"
	"github.com/pkg/errors"
)

const tokenFileMode = 0o600

// Store reads the OAuth client identity and reads/writes the current
// token set at two well-known paths. All operations touch only the
// filesystem; network access belongs to the token lifecycle manager.
type Store struct {
	credentialPath string
	tokenPath      string
}

// NewStore creates a store over explicit file paths. Callers supply the
// paths (usually from internal/config) so tests can point the store at
// a temp directory.
func NewStore(credentialPath, tokenPath string) *Store {
	return &Store{
		credentialPath: credentialPath,
		tokenPath:      tokenPath,
	}
}

// Load reads and validates the credential file. A missing file returns
// ErrCredentialNotFound and a present-but-invalid file returns
// ErrCredentialMalformed, so callers can give different remediation
// guidance for each.
func (s *Store) Load() (*Credential, error) {
	data, err := os.ReadFile(s.credentialPath)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(apperrors.ErrCredentialNotFound, s.credentialPath)
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Load] read credential file")
	}
	cred, err := ParseCredential(data)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Load]")
	}
	return cred, nil
}

// LoadToken reads the persisted token set. An absent file is not an
// error: it returns (nil, nil) so the caller can distinguish "never
// authenticated" from "token file corrupted".
func (s *Store) LoadToken() (*TokenSet, error) {
	data, err := os.ReadFile(s.tokenPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Store.LoadToken] read token file")
	}

	var ts TokenSet
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, errors.Wrap(apperrors.ErrTokenMalformed, err.Error())
	}
	if ts.AccessToken == "" {
		return nil, errors.Wrap(apperrors.ErrTokenMalformed, "missing access_token")
	}
	return &ts, nil
}

// SaveToken persists a token set, creating parent directories as
// needed. The file carries restrictive permissions since it holds
// bearer credentials.
func (s *Store) SaveToken(ts *TokenSet) error {
	if ts == nil || ts.AccessToken == "" {
		return errors.New("[Store.SaveToken] token set requires an access token")
	}
	if err := os.MkdirAll(filepath.Dir(s.tokenPath), 0o700); err != nil {
		return errors.Wrap(err, "[Store.SaveToken] create config directory")
	}
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[Store.SaveToken] marshal token set")
	}
	if err := os.WriteFile(s.tokenPath, data, tokenFileMode); err != nil {
		return errors.Wrap(err, "[Store.SaveToken] write token file")
	}
	return nil
}

// Clear deletes the token file. Idempotent: an absent file is success.
func (s *Store) Clear() error {
	err := os.Remove(s.tokenPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[Store.Clear] remove token file")
	}
	return nil
}
