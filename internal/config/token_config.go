package config

import "time"

type TokenConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour)
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return GetEnvDuration("REFRESH_TOKEN_EXPIRY", 30*24*time.Hour) // 30 days
}
