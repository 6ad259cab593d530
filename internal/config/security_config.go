package config

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetLoginRateLimit() float64
	GetLoginBurst() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetEnableRateLimiting() bool {
	return GetEnv("RATE_LIMITING", "true") == "true"
}

// GetLoginRateLimit is the sustained number of auth attempts per second allowed per client IP
func (Security) GetLoginRateLimit() float64 {
	return GetEnvFloat("LOGIN_RATE_LIMIT", 1)
}

func (Security) GetLoginBurst() int {
	return GetEnvInt("LOGIN_BURST", 5)
}
