package models

import "context"

// CredentialStore represents the interface used to persist the credential pair of a profile.
// Getters return apierrors.ErrTokenNotFound when the token is missing or expired.
type CredentialStore interface {
	AccessTokenGetter
	AccessTokenSetter
	AccessTokenRemover
	RefreshTokenGetter
	RefreshTokenSetter
	RefreshTokenRemover
}

type AccessTokenGetter interface {
	GetAccessToken(ctx context.Context, tokenID string) (AuthToken, error)
}

// AccessTokenSetter stores the token, overwriting any previous one. A non-zero ExpiresAt
// makes the token disappear from the store once it is reached.
type AccessTokenSetter interface {
	SetAccessToken(ctx context.Context, token AuthToken) error
}

type AccessTokenRemover interface {
	RemoveAccessToken(ctx context.Context, tokenID string) error
}

type RefreshTokenGetter interface {
	GetRefreshToken(ctx context.Context, tokenID string) (AuthToken, error)
}

type RefreshTokenSetter interface {
	SetRefreshToken(ctx context.Context, token AuthToken) error
}

type RefreshTokenRemover interface {
	RemoveRefreshToken(ctx context.Context, tokenID string) error
}

// RemoveTokens clears both tokens of a profile, both removals are attempted even if the first fails.
func RemoveTokens(ctx context.Context, store CredentialStore, tokenID string) error {
	accessErr := store.RemoveAccessToken(ctx, tokenID)
	refreshErr := store.RemoveRefreshToken(ctx, tokenID)
	if accessErr != nil {
		return accessErr
	}
	return refreshErr
}
