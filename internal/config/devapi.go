package config

import (
	"fmt"
	"time"
)

// DevAPIConfig configures the development stand-in for the ERP REST backend.
type DevAPIConfig struct {
	SigningKey      RedactedString
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	PurgeInterval   time.Duration
	Users           map[string]RedactedString
}

func (c DevAPIConfig) Validate() error {
	if len(c.SigningKey) < 32 {
		return fmt.Errorf("the dev API signing key has to be at least 32 bytes long, got %d", len(c.SigningKey))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("dev API token TTLs have to be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("the dev API access token TTL (%s) has to be shorter than the refresh token TTL (%s)", c.AccessTokenTTL, c.RefreshTokenTTL)
	}
	if c.PurgeInterval <= 0 {
		return fmt.Errorf("the dev API purge interval has to be positive")
	}
	if len(c.Users) == 0 {
		return fmt.Errorf("the dev API needs at least one user")
	}
	return nil
}
