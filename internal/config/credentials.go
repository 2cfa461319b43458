package config

import (
	"fmt"
	"time"
)

const CredentialStoreMemory string = "memory"
const CredentialStoreFile string = "file"
const CredentialStoreRedis string = "redis"
const CredentialStoreRedisMock string = "redis-mock"

type CredentialsConfig struct {
	Store string
	// ID is the profile under which the token pair is kept.
	ID               string
	FilePath         string
	FallbackFilePath string
	// AccessTokenTTL is the fixed lifetime given to an access token obtained by a refresh.
	AccessTokenTTL time.Duration
}

func (c CredentialsConfig) Validate(e RunningEnvironment) error {
	if c.ID == "" {
		return fmt.Errorf("the credentials profile ID cannot be empty")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("the access token TTL has to be positive, got %s", c.AccessTokenTTL)
	}
	switch c.Store {
	case CredentialStoreMemory, CredentialStoreRedis:
	case CredentialStoreFile:
		if c.FilePath == "" {
			return fmt.Errorf("the file credential store requires a file path")
		}
	case CredentialStoreRedisMock:
		if e != Development {
			return fmt.Errorf("credential store cannot be %q in production", CredentialStoreRedisMock)
		}
	default:
		return fmt.Errorf("unrecognized credential store type %q", c.Store)
	}
	return nil
}
