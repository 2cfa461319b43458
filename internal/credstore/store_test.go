package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/config"
	"github.com/ledgerline/erp-client/internal/db"
	"github.com/ledgerline/erp-client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accessToken(id, value string, expiresAt time.Time) models.AuthToken {
	return models.AuthToken{ID: id, Value: value, ExpiresAt: expiresAt, Type: models.AccessTokenType}
}

func refreshToken(id, value string) models.AuthToken {
	return models.AuthToken{ID: id, Value: value, Type: models.RefreshTokenType}
}

type storeFactory func(t *testing.T) models.CredentialStore

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) models.CredentialStore {
			return NewMemoryStore()
		},
		"file": func(t *testing.T) models.CredentialStore {
			store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "credentials.json"))
			require.NoError(t, err)
			return store
		},
		"redis-mock": func(t *testing.T) models.CredentialStore {
			adapter, _ := db.NewMockRedisAdapter()
			return adapter
		},
		"layered": func(t *testing.T) models.CredentialStore {
			return NewLayeredStore(NewMemoryStore(), NewMemoryStore())
		},
	}
}

func TestCredentialStores(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			_, err := store.GetAccessToken(ctx, "default")
			assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
			_, err = store.GetRefreshToken(ctx, "default")
			assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)

			expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
			require.NoError(t, store.SetAccessToken(ctx, accessToken("default", "A1", expiry)))
			require.NoError(t, store.SetRefreshToken(ctx, refreshToken("default", "R1")))

			token, err := store.GetAccessToken(ctx, "default")
			require.NoError(t, err)
			assert.Equal(t, "A1", token.Value)
			assert.True(t, expiry.Equal(token.ExpiresAt))
			token, err = store.GetRefreshToken(ctx, "default")
			require.NoError(t, err)
			assert.Equal(t, "R1", token.Value)

			require.NoError(t, store.SetAccessToken(ctx, accessToken("default", "A2", expiry)))
			token, err = store.GetAccessToken(ctx, "default")
			require.NoError(t, err)
			assert.Equal(t, "A2", token.Value)

			_, err = store.GetAccessToken(ctx, "other")
			assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)

			require.NoError(t, models.RemoveTokens(ctx, store, "default"))
			_, err = store.GetAccessToken(ctx, "default")
			assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
			_, err = store.GetRefreshToken(ctx, "default")
			assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
		})
	}
}

func TestCredentialStoresRejectWrongType(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			err := store.SetAccessToken(context.Background(), refreshToken("default", "R1"))
			assert.Error(t, err)
		})
	}
}

func TestExpiredTokensAreNotReturned(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			require.NoError(t, store.SetAccessToken(ctx, accessToken("default", "A1", time.Now().Add(-time.Minute))))
			_, err := store.GetAccessToken(ctx, "default")
			assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
		})
	}
}

func TestFileStorePermissionsAndSharing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	first, err := NewFileStore(path)
	require.NoError(t, err)
	second, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, first.SetRefreshToken(ctx, refreshToken("default", "R1")))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := second.GetRefreshToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "R1", token.Value)

	require.NoError(t, second.RemoveRefreshToken(ctx, "default"))
	_, err = first.GetRefreshToken(ctx, "default")
	assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = store.GetAccessToken(context.Background(), "default")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apierrors.ErrTokenNotFound)
}

func TestLayeredStoreFallback(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStore()
	fallback := NewMemoryStore(WithTokens(accessToken("default", "A-fallback", time.Time{})))
	store := NewLayeredStore(primary, fallback)

	token, err := store.GetAccessToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "A-fallback", token.Value)

	require.NoError(t, store.SetAccessToken(ctx, accessToken("default", "A-primary", time.Time{})))
	token, err = store.GetAccessToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "A-primary", token.Value)

	// the fallback never receives writes
	token, err = fallback.GetAccessToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "A-fallback", token.Value)

	require.NoError(t, store.RemoveAccessToken(ctx, "default"))
	_, err = store.GetAccessToken(ctx, "default")
	assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		name      string
		cred      config.CredentialsConfig
		redis     config.RedisConfig
		expectErr bool
		check     func(t *testing.T, store models.CredentialStore)
	}{
		{
			name: "memory",
			cred: config.CredentialsConfig{Store: config.CredentialStoreMemory},
			check: func(t *testing.T, store models.CredentialStore) {
				assert.IsType(t, &MemoryStore{}, store)
			},
		},
		{
			name: "file",
			cred: config.CredentialsConfig{Store: config.CredentialStoreFile, FilePath: filepath.Join(dir, "c.json")},
			check: func(t *testing.T, store models.CredentialStore) {
				assert.IsType(t, &FileStore{}, store)
			},
		},
		{
			name:  "encrypted redis mock",
			cred:  config.CredentialsConfig{Store: config.CredentialStoreRedisMock},
			redis: config.RedisConfig{Encryption: config.TokenEncryptionConfig{Enabled: true, SecretKey: "0123456789abcdef0123456789abcdef"}},
			check: func(t *testing.T, store models.CredentialStore) {
				assert.IsType(t, &db.RedisAdapter{}, store)
			},
		},
		{
			name: "layered",
			cred: config.CredentialsConfig{Store: config.CredentialStoreMemory, FallbackFilePath: filepath.Join(dir, "f.json")},
			check: func(t *testing.T, store models.CredentialStore) {
				assert.IsType(t, &LayeredStore{}, store)
			},
		},
		{
			name:      "file without path",
			cred:      config.CredentialsConfig{Store: config.CredentialStoreFile},
			expectErr: true,
		},
		{
			name:      "unknown",
			cred:      config.CredentialsConfig{Store: "cookies"},
			expectErr: true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store, err := NewFromConfig(testCase.cred, testCase.redis)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			testCase.check(t, store)
		})
	}
}
