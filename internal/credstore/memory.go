package credstore

import (
	"context"
	"sync"

	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
)

// MemoryStore keeps credential pairs for the lifetime of the process.
type MemoryStore struct {
	lock          sync.RWMutex
	accessTokens  map[string]models.AuthToken
	refreshTokens map[string]models.AuthToken
}

type MemoryStoreOption func(*MemoryStore)

// WithTokens seeds the store, the token type decides which side it lands on.
func WithTokens(tokens ...models.AuthToken) MemoryStoreOption {
	return func(m *MemoryStore) {
		for _, token := range tokens {
			switch token.Type {
			case models.AccessTokenType:
				m.accessTokens[token.ID] = token
			case models.RefreshTokenType:
				m.refreshTokens[token.ID] = token
			}
		}
	}
}

func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		accessTokens:  map[string]models.AuthToken{},
		refreshTokens: map[string]models.AuthToken{},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *MemoryStore) GetAccessToken(_ context.Context, tokenID string) (models.AuthToken, error) {
	return m.get(m.accessTokens, tokenID)
}

func (m *MemoryStore) GetRefreshToken(_ context.Context, tokenID string) (models.AuthToken, error) {
	return m.get(m.refreshTokens, tokenID)
}

func (m *MemoryStore) SetAccessToken(_ context.Context, token models.AuthToken) error {
	return m.set(m.accessTokens, models.AccessTokenType, token)
}

func (m *MemoryStore) SetRefreshToken(_ context.Context, token models.AuthToken) error {
	return m.set(m.refreshTokens, models.RefreshTokenType, token)
}

func (m *MemoryStore) RemoveAccessToken(_ context.Context, tokenID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.accessTokens, tokenID)
	return nil
}

func (m *MemoryStore) RemoveRefreshToken(_ context.Context, tokenID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.refreshTokens, tokenID)
	return nil
}

func (m *MemoryStore) get(tokens map[string]models.AuthToken, tokenID string) (models.AuthToken, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	token, found := tokens[tokenID]
	if !found || token.Expired() {
		return models.AuthToken{}, apierrors.ErrTokenNotFound
	}
	return token, nil
}

func (m *MemoryStore) set(tokens map[string]models.AuthToken, tokenType models.OauthTokenType, token models.AuthToken) error {
	if err := checkType(token, tokenType); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	tokens[token.ID] = token
	return nil
}
