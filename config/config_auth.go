package config

import "time"

type AuthConfig struct {
	Enable              bool          `mapstructure:"auth_enable"`
	SessionIDSize       int           `mapstructure:"session_id_size" validate:"gt=0"`
	SessionTTL          time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	SessionCookie       string        `mapstructure:"session_cookie" validate:"required"`
	SessionsRedisPrefix string        `mapstructure:"session_redis_prefix" validate:"required"`
	// SessionInsecure drops the Secure attribute from the session cookie, for
	// local development over plain http only.
	SessionInsecure bool   `mapstructure:"session_insecure"`
	GoogleClientID  string `mapstructure:"google_client_id"`
}
