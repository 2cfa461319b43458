// Package credstore contains the credential stores the API client reads its tokens from.
package credstore

import (
	"fmt"

	"github.com/ledgerline/erp-client/internal/config"
	"github.com/ledgerline/erp-client/internal/db"
	"github.com/ledgerline/erp-client/internal/models"
)

func checkType(token models.AuthToken, expected models.OauthTokenType) error {
	if token.Type != expected {
		return fmt.Errorf("token %s is not of type %s", token, expected)
	}
	if token.ID == "" {
		return fmt.Errorf("token %s has no profile ID", token)
	}
	return nil
}

// NewFromConfig builds the credential store selected in the configuration.
func NewFromConfig(credConfig config.CredentialsConfig, redisConfig config.RedisConfig) (models.CredentialStore, error) {
	var primary models.CredentialStore
	switch credConfig.Store {
	case config.CredentialStoreMemory:
		primary = NewMemoryStore()
	case config.CredentialStoreFile:
		fileStore, err := NewFileStore(credConfig.FilePath)
		if err != nil {
			return nil, err
		}
		primary = fileStore
	case config.CredentialStoreRedis, config.CredentialStoreRedisMock:
		options := []db.RedisAdapterOption{db.WithRedisConfig(redisConfig)}
		if credConfig.Store == config.CredentialStoreRedisMock {
			options = []db.RedisAdapterOption{db.WithMockRedis()}
		}
		if redisConfig.Encryption.Enabled && redisConfig.Encryption.SecretKey != "" {
			options = append(options, db.WithEncryption(string(redisConfig.Encryption.SecretKey)))
		}
		adapter, err := db.NewRedisAdapter(options...)
		if err != nil {
			return nil, err
		}
		primary = adapter
	default:
		return nil, fmt.Errorf("unrecognized credential store type %q", credConfig.Store)
	}
	if credConfig.FallbackFilePath == "" {
		return primary, nil
	}
	fallback, err := NewFileStore(credConfig.FallbackFilePath)
	if err != nil {
		return nil, err
	}
	return NewLayeredStore(primary, fallback), nil
}
