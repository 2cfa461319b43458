package config

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMainFile(t *testing.T, fpath string) {
	contents := `---
runningEnvironment: development
client:
  origin: https://erp.example.com
  timeout: 5s
credentials:
  store: memory
  id: sales
redis:
  addresses:
    - redis-1:6379
    - redis-2:6379
devAPI:
  users:
    alice: not-the-real-password
`
	err := os.WriteFile(fpath, []byte(contents), 0666)
	require.NoError(t, err)
}

func createSecretFile(t *testing.T, fpath string) {
	contents := `---
redis:
  encryption:
    secretKey: secret-key-from-secret-file-1234
devAPI:
  signingKey: signing-key-from-the-secret-file-0123456789
  users:
    alice: password-from-secret-file
`
	err := os.WriteFile(fpath, []byte(contents), 0666)
	require.NoError(t, err)
}

func TestReadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_LOCATION", t.TempDir())
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.Equal(t, Production, config.RunningEnvironment)
	assert.Equal(t, "/api", config.Client.BaseURL)
	assert.Equal(t, "/auth/refresh", config.Client.RefreshPath)
	assert.Equal(t, 30*time.Second, config.Client.Timeout)
	assert.Equal(t, CredentialStoreFile, config.Credentials.Store)
	assert.Equal(t, "default", config.Credentials.ID)
	assert.Equal(t, 24*time.Hour, config.Credentials.AccessTokenTTL)
	base, err := config.Client.ResolvedBaseURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", base.String())
}

func TestReadConfigFiles(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CONFIG_LOCATION", tmpDir)
	createMainFile(t, path.Join(tmpDir, "config.yaml"))
	createSecretFile(t, path.Join(tmpDir, "secret_config.yaml"))
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.Equal(t, Development, config.RunningEnvironment)
	assert.Equal(t, "https://erp.example.com", config.Client.Origin.String())
	assert.Equal(t, 5*time.Second, config.Client.Timeout)
	assert.Equal(t, CredentialStoreMemory, config.Credentials.Store)
	assert.Equal(t, "sales", config.Credentials.ID)
	assert.Equal(t, []string{"redis-1:6379", "redis-2:6379"}, config.Redis.Addresses)
	assert.Equal(t, RedactedString("secret-key-from-secret-file-1234"), config.Redis.Encryption.SecretKey)
	assert.Equal(t, RedactedString("signing-key-from-the-secret-file-0123456789"), config.DevAPI.SigningKey)
	assert.Equal(t, RedactedString("password-from-secret-file"), config.DevAPI.Users["alice"])
	base, err := config.Client.ResolvedBaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com/api", base.String())
}

func TestReadConfigWithEnvVars(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CONFIG_LOCATION", tmpDir)
	createMainFile(t, path.Join(tmpDir, "config.yaml"))
	createSecretFile(t, path.Join(tmpDir, "secret_config.yaml"))
	t.Setenv("ERPCLIENT_CLIENT_BASEURL", "https://api.erp.example.com/v2/")
	t.Setenv("ERPCLIENT_CREDENTIALS_ACCESSTOKENTTL", "2h")
	t.Setenv("ERPCLIENT_REDIS_ENCRYPTION_SECRETKEY", "token-encryption-key-12345678910")
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, config.Credentials.AccessTokenTTL)
	assert.Equal(t, RedactedString("token-encryption-key-12345678910"), config.Redis.Encryption.SecretKey)
	base, err := config.Client.ResolvedBaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.erp.example.com/v2", base.String())
}

func TestReadConfigInvalid(t *testing.T) {
	t.Setenv("CONFIG_LOCATION", t.TempDir())
	t.Setenv("ERPCLIENT_CREDENTIALS_STORE", "cookies")
	ch := NewConfigHandler()
	_, err := ch.Config()
	assert.Error(t, err)
}

func TestHandleChangesAfterConfigEdit(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CONFIG_LOCATION", tmpDir)
	configPath := path.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte("debugMode: false\n"), 0666)
	require.NoError(t, err)
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	require.False(t, config.DebugMode)

	changes := make(chan Config, 10)
	ch.HandleChanges(func(c Config, err error) {
		if err != nil {
			return
		}
		select {
		case changes <- c:
		default:
		}
	})
	ch.Watch()

	err = os.WriteFile(configPath, []byte("debugMode: true\n"), 0666)
	require.NoError(t, err)
	timeout := time.After(10 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.DebugMode {
				return
			}
		case <-timeout:
			t.Fatal("the change callback did not report the edited config")
		}
	}
}
