package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultJWTExpirationHours is the token lifetime when JWT_EXPIRATION_HOURS is unset.
const DefaultJWTExpirationHours = 24

// JWTConfig holds configuration for the optional bearer-token guard on the API.
// An empty Secret leaves the API open.
type JWTConfig struct {
	Secret          string `json:"secret,omitempty" yaml:"secret,omitempty"`
	ExpirationHours int    `json:"expiration_hours,omitempty" yaml:"expiration_hours,omitempty" validate:"gte=0"`
}

// NewJWTConfig creates a JWT configuration from environment variables.
// It reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	config := &JWTConfig{
		Secret:          secret,
		ExpirationHours: DefaultJWTExpirationHours,
	}
	if err := config.applyExpiration(os.Getenv("JWT_EXPIRATION_HOURS")); err != nil {
		return nil, err
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// Enabled reports whether tokens are required on the API.
func (c *JWTConfig) Enabled() bool {
	return c != nil && c.Secret != ""
}

func (c *JWTConfig) applyExpiration(value string) error {
	if value == "" {
		return nil
	}
	hours, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}
	if hours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", hours)
	}
	c.ExpirationHours = hours
	return nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours == 0 {
		c.ExpirationHours = DefaultJWTExpirationHours
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
