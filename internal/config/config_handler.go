package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix string = "ERPCLIENT"

type ConfigHandler struct {
	mainViper   *viper.Viper
	secretViper *viper.Viper
	lock        *sync.Mutex
}

// HandleChanges passes the merged configuration to callback every time one of the watched
// files changes. It has to be registered before Watch is called.
func (c *ConfigHandler) HandleChanges(callback func(Config, error)) {
	for name, v := range map[string]*viper.Viper{"config": c.mainViper, "secret_config": c.secretViper} {
		name := name
		v.OnConfigChange(func(e fsnotify.Event) {
			slog.Info("CONFIG", "message", "config file changed", "file", name, "path", e.Name, "op", e.Op.String())
			callback(c.Config())
		})
	}
}

// Creates a configuration handler that reads the configuration files, merges them and can watch
// them for changes. Please note that the merges replace whole arrays - they do not merge arrays.
// The secret file will always overwrite anything in the non-secret / regular file. And any environment
// variables will always rewrite stuff in both files, so the order of preference from most
// preferred to least is environment variables, secret config, non-secret config, defaults.
// Both files are optional.
func NewConfigHandler(extraPaths ...string) *ConfigHandler {
	main := viper.New()
	main.SetConfigType("yaml")
	main.SetConfigName("config")
	setDefaults(main)
	secret := viper.New()
	secret.SetConfigType("yaml")
	secret.SetConfigName("secret_config")
	// Viper will look through the list of paths and use the first one where there is a file
	// so the explicit paths and the one in the env variable always take precedence over the rest
	configPaths := append([]string{}, extraPaths...)
	configPathEnv := os.Getenv("CONFIG_LOCATION")
	if configPathEnv != "" {
		configPaths = append(configPaths, configPathEnv)
	}
	configPaths = append(configPaths, "/etc/erp-client", ".")
	for _, path := range configPaths {
		main.AddConfigPath(path)
		secret.AddConfigPath(path)
	}
	return &ConfigHandler{secretViper: secret, mainViper: main, lock: &sync.Mutex{}}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("runningEnvironment", string(Production))
	v.SetDefault("debugMode", false)

	v.SetDefault("client.baseURL", "/api")
	v.SetDefault("client.origin", "http://localhost:8080")
	v.SetDefault("client.refreshPath", "/auth/refresh")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.refreshTimeout", 10*time.Second)

	v.SetDefault("credentials.store", CredentialStoreFile)
	v.SetDefault("credentials.id", "default")
	v.SetDefault("credentials.filePath", defaultCredentialsPath())
	v.SetDefault("credentials.fallbackFilePath", "")
	v.SetDefault("credentials.accessTokenTTL", 24*time.Hour)

	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.isSentinel", false)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.masterName", "")
	v.SetDefault("redis.dbIndex", 0)
	v.SetDefault("redis.encryption.enabled", false)
	v.SetDefault("redis.encryption.secretKey", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rateLimits.enabled", false)
	v.SetDefault("server.rateLimits.rate", 20)
	v.SetDefault("server.rateLimits.burst", 40)
	v.SetDefault("server.allowOrigin", []string{})

	v.SetDefault("devAPI.signingKey", "")
	v.SetDefault("devAPI.accessTokenTTL", 15*time.Minute)
	v.SetDefault("devAPI.refreshTokenTTL", 7*24*time.Hour)
	v.SetDefault("devAPI.purgeInterval", time.Minute)

	v.SetDefault("monitoring.sentry.enabled", false)
	v.SetDefault("monitoring.sentry.dsn", "")
	v.SetDefault("monitoring.sentry.environment", "")
	v.SetDefault("monitoring.sentry.sampleRate", 0.0)
	v.SetDefault("monitoring.prometheus.enabled", false)
	v.SetDefault("monitoring.prometheus.port", 8765)
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "erp-client-credentials.json"
	}
	return filepath.Join(dir, "erp-client", "credentials.json")
}

func readOptional(v *viper.Viper, name string) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		slog.Debug("could not find any config file, defaults and environment variables will be used", "file", name)
		return nil
	}
	return err
}

func (c *ConfigHandler) getConfig() (Config, error) {
	var output Config
	err := readOptional(c.mainViper, "config")
	if err != nil {
		return Config{}, err
	}
	err = readOptional(c.secretViper, "secret_config")
	if err != nil {
		return Config{}, err
	}
	// here the secret config will overwrite anything from the non-secret configuration
	err = c.mainViper.MergeConfigMap(c.secretViper.AllSettings())
	if err != nil {
		return Config{}, err
	}
	// the env variables will overwrite stuff in both files if set
	for _, key := range c.mainViper.AllKeys() {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		err := c.mainViper.BindEnv(key, envKey)
		if err != nil {
			return Config{}, fmt.Errorf("config: unable to bind env %s: %w", envKey, err)
		}
	}
	err = c.mainViper.Unmarshal(
		&output,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				parseStringAsURL(),
			),
		),
	)
	if err != nil {
		return Config{}, err
	}
	err = output.Validate()
	if err != nil {
		return Config{}, err
	}
	return output, nil
}

func (c *ConfigHandler) Config() (Config, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.getConfig()
}

// Watch follows the files found by the last Config call, a file that did not exist then is not watched.
func (c *ConfigHandler) Watch() {
	c.mainViper.WatchConfig()
	c.secretViper.WatchConfig()
}

func parseStringAsURL() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (interface{}, error) {
		// Check that the data is string
		if f.Kind() != reflect.String {
			return data, nil
		}

		// Check that the target type is our custom type
		if t != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		// Return the parsed value
		dataStr, ok := data.(string)
		if !ok {
			return nil, fmt.Errorf("cannot cast URL value to string")
		}
		if dataStr == "" {
			return nil, fmt.Errorf("empty values are not allowed for URLs")
		}
		url, err := url.Parse(dataStr)
		if err != nil {
			return nil, err
		}
		return url, nil
	}
}
