package config

type Config interface {
	PathsConfig
	OAuthConfig
}

type mainConfig struct {
	Paths
	OAuth
}

func New() Config {
	return mainConfig{}
}
