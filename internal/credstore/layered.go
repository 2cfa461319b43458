package credstore

import (
	"context"
	"errors"

	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
)

// AccessTokenFallback is a secondary source for access tokens.
type AccessTokenFallback interface {
	models.AccessTokenGetter
	models.AccessTokenRemover
}

// LayeredStore reads the access token from the primary store first and falls back to a
// secondary store when the primary has none. All writes go to the primary, removing the
// access token clears it from both so a cleared session cannot be revived by the fallback.
type LayeredStore struct {
	models.CredentialStore
	fallback AccessTokenFallback
}

func NewLayeredStore(primary models.CredentialStore, fallback AccessTokenFallback) *LayeredStore {
	return &LayeredStore{CredentialStore: primary, fallback: fallback}
}

func (l *LayeredStore) GetAccessToken(ctx context.Context, tokenID string) (models.AuthToken, error) {
	token, err := l.CredentialStore.GetAccessToken(ctx, tokenID)
	if err == nil || !errors.Is(err, apierrors.ErrTokenNotFound) || l.fallback == nil {
		return token, err
	}
	return l.fallback.GetAccessToken(ctx, tokenID)
}

func (l *LayeredStore) RemoveAccessToken(ctx context.Context, tokenID string) error {
	err := l.CredentialStore.RemoveAccessToken(ctx, tokenID)
	if l.fallback == nil {
		return err
	}
	return errors.Join(err, l.fallback.RemoveAccessToken(ctx, tokenID))
}
