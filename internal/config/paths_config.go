package config

import (
	"os"
	"path/filepath"
)

const folderEnvVar = "VIBE_LOGGER_DIR"

type PathsConfig interface {
	GetConfigDir() string
	GetCredentialPath() string
	GetTokenPath() string
}

type Paths struct{}

var _ PathsConfig = Paths{}

// GetConfigDir returns the per-user configuration directory. The
// VIBE_LOGGER_DIR environment variable overrides the default of
// ~/.vibe-logger.
func (Paths) GetConfigDir() string {
	if dir := os.Getenv(folderEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vibe-logger"
	}
	return filepath.Join(home, ".vibe-logger")
}

func (p Paths) GetCredentialPath() string {
	return filepath.Join(p.GetConfigDir(), "credentials.json")
}

func (p Paths) GetTokenPath() string {
	return filepath.Join(p.GetConfigDir(), "token.json")
}
