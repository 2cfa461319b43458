package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getValidConfig(t *testing.T) Config {
	origin, err := url.Parse("http://localhost:8080")
	require.NoError(t, err)
	return Config{
		RunningEnvironment: Production,
		Client: ClientConfig{
			BaseURL:        "/api",
			Origin:         origin,
			RefreshPath:    "/auth/refresh",
			Timeout:        30 * time.Second,
			RefreshTimeout: 10 * time.Second,
		},
		Credentials: CredentialsConfig{
			Store:          CredentialStoreRedis,
			ID:             "default",
			AccessTokenTTL: 24 * time.Hour,
		},
		Redis: RedisConfig{
			Addresses: []string{"localhost:6379"},
		},
	}
}

func TestValidConfig(t *testing.T) {
	config := getValidConfig(t)

	err := config.Validate()

	assert.NoError(t, err)
}

func TestInvalidRunningEnvironment(t *testing.T) {
	config := getValidConfig(t)
	config.RunningEnvironment = "staging"

	err := config.Validate()

	assert.Error(t, err)
}

func TestRelativeBaseURLWithoutOrigin(t *testing.T) {
	config := getValidConfig(t)
	config.Client.Origin = nil

	err := config.Validate()

	assert.Error(t, err)
}

func TestAbsoluteBaseURLWithoutOrigin(t *testing.T) {
	config := getValidConfig(t)
	config.Client.Origin = nil
	config.Client.BaseURL = "https://erp.example.com/api/"

	require.NoError(t, config.Validate())
	base, err := config.Client.ResolvedBaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com/api", base.String())
}

func TestInvalidRefreshPath(t *testing.T) {
	config := getValidConfig(t)
	config.Client.RefreshPath = "auth/refresh"

	err := config.Validate()

	assert.Error(t, err)
}

func TestRedisMockNotAllowedInProduction(t *testing.T) {
	config := getValidConfig(t)
	config.Credentials.Store = CredentialStoreRedisMock

	assert.Error(t, config.Validate())

	config.RunningEnvironment = Development
	assert.NoError(t, config.Validate())
}

func TestFileStoreNeedsPath(t *testing.T) {
	config := getValidConfig(t)
	config.Credentials.Store = CredentialStoreFile

	assert.Error(t, config.Validate())

	config.Credentials.FilePath = "/tmp/credentials.json"
	assert.NoError(t, config.Validate())
}

func TestInvalidRedisEncryptionKey(t *testing.T) {
	config := getValidConfig(t)
	config.Redis.Encryption = TokenEncryptionConfig{Enabled: true, SecretKey: "invalid"}

	err := config.Validate()

	assert.Error(t, err)
}

func TestRedisIgnoredForMemoryStore(t *testing.T) {
	config := getValidConfig(t)
	config.Credentials.Store = CredentialStoreMemory
	config.Redis = RedisConfig{}

	assert.NoError(t, config.Validate())
}

func TestDevAPIConfig(t *testing.T) {
	devAPI := DevAPIConfig{
		SigningKey:      "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		PurgeInterval:   time.Minute,
		Users:           map[string]RedactedString{"alice": "secret"},
	}
	assert.NoError(t, devAPI.Validate())

	devAPI.AccessTokenTTL = 2 * time.Hour
	assert.Error(t, devAPI.Validate())

	devAPI.AccessTokenTTL = time.Minute
	devAPI.SigningKey = "short"
	assert.Error(t, devAPI.Validate())
}
