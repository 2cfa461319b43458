package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var compareOptions []cmp.Option = []cmp.Option{cmpopts.EquateApproxTime(time.Millisecond)}

// Check that RedisAdapter implements CredentialStore.
// This test would fail to compile otherwise.
func TestRedisAdapterIsCredentialStore(t *testing.T) {
	rdb := RedisAdapter{}
	_ = models.CredentialStore(rdb)
}

func TestSetGetRemoveAccessToken(t *testing.T) {
	ctx := context.Background()
	adapter, client := NewMockRedisAdapter()
	myAccessToken := models.AuthToken{
		ID:        "default",
		Value:     "A1",
		ExpiresAt: time.Now().UTC().Add(time.Hour * 24),
		Type:      models.AccessTokenType,
	}
	err := adapter.SetAccessToken(ctx, myAccessToken)
	require.NoError(t, err)
	accessToken, err := adapter.GetAccessToken(ctx, myAccessToken.ID)
	require.NoError(t, err)
	assert.Truef(
		t,
		cmp.Equal(myAccessToken, accessToken, compareOptions...),
		"The two values are not equal, diff is: %s\n",
		cmp.Diff(myAccessToken, accessToken, compareOptions...),
	)
	ttl, hasTTL := client.TTL("accessToken:default")
	assert.True(t, hasTTL)
	assert.InDelta(t, (24*time.Hour + tokenExpiresAtLeeway).Seconds(), ttl.Seconds(), 5)

	err = adapter.RemoveAccessToken(ctx, myAccessToken.ID)
	require.NoError(t, err)
	_, err = adapter.GetAccessToken(ctx, myAccessToken.ID)
	assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
}

func TestSetGetRefreshTokenWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	adapter, client := NewMockRedisAdapter()
	myRefreshToken := models.AuthToken{
		ID:    "default",
		Value: "R1",
		Type:  models.RefreshTokenType,
	}
	require.NoError(t, adapter.SetRefreshToken(ctx, myRefreshToken))
	refreshToken, err := adapter.GetRefreshToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "R1", refreshToken.Value)
	assert.True(t, refreshToken.ExpiresAt.IsZero())
	_, hasTTL := client.TTL("refreshToken:default")
	assert.False(t, hasTTL)
}

func TestSetTokenWrongType(t *testing.T) {
	ctx := context.Background()
	adapter, _ := NewMockRedisAdapter()
	err := adapter.SetAccessToken(ctx, models.AuthToken{ID: "default", Value: "R1", Type: models.RefreshTokenType})
	assert.Error(t, err)
	err = adapter.SetRefreshToken(ctx, models.AuthToken{ID: "default", Value: "A1", Type: models.AccessTokenType})
	assert.Error(t, err)
}

func TestGetExpiredToken(t *testing.T) {
	ctx := context.Background()
	adapter, _ := NewMockRedisAdapter()
	// the key itself lives a few seconds longer than the token
	err := adapter.SetAccessToken(ctx, models.AuthToken{
		ID:        "default",
		Value:     "A1",
		ExpiresAt: time.Now().UTC().Add(-time.Second),
		Type:      models.AccessTokenType,
	})
	require.NoError(t, err)
	_, err = adapter.GetAccessToken(ctx, "default")
	assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
}

func TestEncryptedTokens(t *testing.T) {
	ctx := context.Background()
	adapter, client := NewMockRedisAdapter("0123456789abcdef0123456789abcdef")
	token := models.AuthToken{ID: "default", Value: "R1", Type: models.RefreshTokenType}
	require.NoError(t, adapter.SetRefreshToken(ctx, token))

	raw, err := client.HGetAll(ctx, "refreshToken:default").Result()
	require.NoError(t, err)
	assert.NotEqual(t, "R1", raw["Value"])

	stored, err := adapter.GetRefreshToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "R1", stored.Value)
}

func TestProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	adapter, _ := NewMockRedisAdapter()
	require.NoError(t, adapter.SetAccessToken(ctx, models.AuthToken{ID: "sales", Value: "A1", Type: models.AccessTokenType}))
	_, err := adapter.GetAccessToken(ctx, "purchasing")
	assert.ErrorIs(t, err, apierrors.ErrTokenNotFound)
}
