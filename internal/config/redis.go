package config

import "fmt"

type TokenEncryptionConfig struct {
	Enabled   bool
	SecretKey RedactedString
}

type RedisConfig struct {
	Addresses  []string
	IsSentinel bool
	Password   RedactedString
	MasterName string
	DBIndex    int
	Encryption TokenEncryptionConfig
}

func (c RedisConfig) Validate(e RunningEnvironment) error {
	if c.Encryption.Enabled && len(c.Encryption.SecretKey) != 32 {
		return fmt.Errorf(
			"token encryption key has to be 32 bytes long, the provided one is %d long",
			len(c.Encryption.SecretKey),
		)
	}
	if len(c.Addresses) == 0 {
		return fmt.Errorf("at least one redis address is required")
	}
	if c.IsSentinel && c.MasterName == "" {
		return fmt.Errorf("a master name is required when redis sentinel is used")
	}
	return nil
}
