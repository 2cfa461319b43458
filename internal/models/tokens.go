package models

import (
	"fmt"
	"log/slog"
	"time"
)

// AuthToken is a struct used to store and work with access and refresh tokens.
// ID is the credential profile the token belongs to.
type AuthToken struct {
	ID        string
	Value     string
	ExpiresAt time.Time
	Type      OauthTokenType
}

// Encrypt returns a copy of the token with its value encrypted, the token is returned as is
// when there is no encryptor
func (o AuthToken) Encrypt(enc Encryptor) (AuthToken, error) {
	if enc == nil {
		return o, nil
	}
	encValue, err := enc.Encrypt(o.Value)
	if err != nil {
		return AuthToken{}, err
	}
	output := o
	output.Value = encValue
	return output, nil
}

// Decrypt returns a copy of the token with its value decrypted, the token is returned as is
// when there is no encryptor
func (o AuthToken) Decrypt(enc Encryptor) (AuthToken, error) {
	if enc == nil {
		return o, nil
	}
	decValue, err := enc.Decrypt(o.Value)
	if err != nil {
		return AuthToken{}, err
	}
	output := o
	output.Value = decValue
	return output, nil
}

// String immplements the Stringer interface for printing the token in logs
func (o AuthToken) String() string {
	return fmt.Sprintf(
		"%s<ID: %s, Value: redacted, ExpiresAt: %s>",
		o.Type,
		o.ID,
		o.ExpiresAt,
	)
}

// LogValue keeps the token value out of structured logs.
func (o AuthToken) LogValue() slog.Value {
	return slog.StringValue(o.String())
}

func (o AuthToken) Expired() bool {
	if o.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().UTC().After(o.ExpiresAt)
}

// Valid reports whether the token carries a value and has not expired yet.
func (o AuthToken) Valid() bool {
	return o.Value != "" && !o.Expired()
}
