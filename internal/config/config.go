package config

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	SecurityConfig
	SystemConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetJWTSecret() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Security
	System
}

func New() Config {
	return mainConfig{}
}
