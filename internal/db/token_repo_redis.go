package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
)

const (
	accessTokenPrefix  string = "accessToken"
	refreshTokenPrefix string = "refreshToken"
)

const tokenExpiresAtLeeway time.Duration = 10 * time.Second

// GetAccessToken reads the access token of a profile from Redis
func (r RedisAdapter) GetAccessToken(ctx context.Context, tokenID string) (models.AuthToken, error) {
	return r.getAuthToken(ctx, r.accessTokenKey(tokenID))
}

// GetRefreshToken reads the refresh token of a profile from Redis
func (r RedisAdapter) GetRefreshToken(ctx context.Context, tokenID string) (models.AuthToken, error) {
	return r.getAuthToken(ctx, r.refreshTokenKey(tokenID))
}

// SetAccessToken writes the access token to Redis, the key expires together with the token.
func (r RedisAdapter) SetAccessToken(ctx context.Context, token models.AuthToken) error {
	if token.Type != models.AccessTokenType {
		return fmt.Errorf("token is not of the right type")
	}
	return r.setAuthToken(ctx, token)
}

// SetRefreshToken writes the refresh token to Redis, the key expires together with the token.
func (r RedisAdapter) SetRefreshToken(ctx context.Context, token models.AuthToken) error {
	if token.Type != models.RefreshTokenType {
		return fmt.Errorf("token is not of the right type")
	}
	return r.setAuthToken(ctx, token)
}

func (r RedisAdapter) RemoveAccessToken(ctx context.Context, tokenID string) error {
	return r.rdb.Del(ctx, r.accessTokenKey(tokenID)).Err()
}

func (r RedisAdapter) RemoveRefreshToken(ctx context.Context, tokenID string) error {
	return r.rdb.Del(ctx, r.refreshTokenKey(tokenID)).Err()
}

func (RedisAdapter) accessTokenKey(tokenID string) string {
	return accessTokenPrefix + ":" + tokenID
}

func (RedisAdapter) refreshTokenKey(tokenID string) string {
	return refreshTokenPrefix + ":" + tokenID
}

func (r RedisAdapter) getTokenKey(token models.AuthToken) string {
	switch token.Type {
	case models.AccessTokenType:
		return r.accessTokenKey(token.ID)
	case models.RefreshTokenType:
		return r.refreshTokenKey(token.ID)
	default:
		return "unknown:" + token.ID
	}
}

// getAuthToken reads a specific token from redis, decrypting if necessary.
func (r RedisAdapter) getAuthToken(ctx context.Context, key string) (models.AuthToken, error) {
	output := models.AuthToken{}
	raw, err := r.rdb.HGetAll(
		ctx,
		key,
	).Result()
	if err != nil {
		return output, err
	}

	err = r.deserializeToStruct(raw, &output)
	if err != nil {
		if err == apierrors.ErrMissingDBResource {
			err = apierrors.ErrTokenNotFound
		}
		return models.AuthToken{}, err
	}
	// the key expiry has a leeway so the token itself is checked as well
	if output.Expired() {
		return models.AuthToken{}, apierrors.ErrTokenNotFound
	}

	decToken, err := output.Decrypt(r.encryptor)
	if err != nil {
		return models.AuthToken{}, err
	}
	return decToken, nil
}

func (r RedisAdapter) setAuthToken(ctx context.Context, token models.AuthToken) error {
	if !token.Type.Valid() {
		return fmt.Errorf("unknown token type: %s", token.Type)
	}

	encToken, err := token.Encrypt(r.encryptor)
	if err != nil {
		return err
	}

	slog.Debug(
		"TOKEN STORE",
		"message",
		"saving token",
		"token",
		token,
	)

	key := r.getTokenKey(token)
	err = r.rdb.HSet(
		ctx,
		key,
		r.serializeStruct(encToken)...,
	).Err()
	if err != nil {
		return err
	}
	if token.ExpiresAt.IsZero() {
		return r.rdb.Persist(ctx, key).Err()
	}
	return r.rdb.ExpireAt(ctx, key, token.ExpiresAt.Add(tokenExpiresAtLeeway)).Err()
}
