package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
)

type fileToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type fileProfile struct {
	AccessToken  *fileToken `json:"accessToken,omitempty"`
	RefreshToken *fileToken `json:"refreshToken,omitempty"`
}

// FileStore persists credential pairs of all profiles in a single JSON file readable
// only by the current user. Every operation reads the file again so that separate
// processes sharing the file see each other's updates.
type FileStore struct {
	path string
	lock sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("the credentials file path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) GetAccessToken(_ context.Context, tokenID string) (models.AuthToken, error) {
	return f.get(tokenID, models.AccessTokenType)
}

func (f *FileStore) GetRefreshToken(_ context.Context, tokenID string) (models.AuthToken, error) {
	return f.get(tokenID, models.RefreshTokenType)
}

func (f *FileStore) SetAccessToken(_ context.Context, token models.AuthToken) error {
	if err := checkType(token, models.AccessTokenType); err != nil {
		return err
	}
	return f.update(token.ID, func(p *fileProfile) {
		p.AccessToken = &fileToken{Value: token.Value, ExpiresAt: token.ExpiresAt}
	})
}

func (f *FileStore) SetRefreshToken(_ context.Context, token models.AuthToken) error {
	if err := checkType(token, models.RefreshTokenType); err != nil {
		return err
	}
	return f.update(token.ID, func(p *fileProfile) {
		p.RefreshToken = &fileToken{Value: token.Value, ExpiresAt: token.ExpiresAt}
	})
}

func (f *FileStore) RemoveAccessToken(_ context.Context, tokenID string) error {
	return f.update(tokenID, func(p *fileProfile) { p.AccessToken = nil })
}

func (f *FileStore) RemoveRefreshToken(_ context.Context, tokenID string) error {
	return f.update(tokenID, func(p *fileProfile) { p.RefreshToken = nil })
}

func (f *FileStore) get(tokenID string, tokenType models.OauthTokenType) (models.AuthToken, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	profiles, err := f.read()
	if err != nil {
		return models.AuthToken{}, err
	}
	profile, found := profiles[tokenID]
	if !found {
		return models.AuthToken{}, apierrors.ErrTokenNotFound
	}
	stored := profile.AccessToken
	if tokenType == models.RefreshTokenType {
		stored = profile.RefreshToken
	}
	if stored == nil || stored.Value == "" {
		return models.AuthToken{}, apierrors.ErrTokenNotFound
	}
	token := models.AuthToken{ID: tokenID, Value: stored.Value, ExpiresAt: stored.ExpiresAt, Type: tokenType}
	if token.Expired() {
		return models.AuthToken{}, apierrors.ErrTokenNotFound
	}
	return token, nil
}

func (f *FileStore) update(tokenID string, change func(*fileProfile)) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	profiles, err := f.read()
	if err != nil {
		return err
	}
	profile := profiles[tokenID]
	change(&profile)
	if profile.AccessToken == nil && profile.RefreshToken == nil {
		delete(profiles, tokenID)
	} else {
		profiles[tokenID] = profile
	}
	return f.write(profiles)
}

func (f *FileStore) read() (map[string]fileProfile, error) {
	profiles := map[string]fileProfile{}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return profiles, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read the credentials file: %w", err)
	}
	if len(raw) == 0 {
		return profiles, nil
	}
	err = json.Unmarshal(raw, &profiles)
	if err != nil {
		return nil, fmt.Errorf("cannot parse the credentials file %s: %w", f.path, err)
	}
	return profiles, nil
}

func (f *FileStore) write(profiles map[string]fileProfile) error {
	err := os.MkdirAll(filepath.Dir(f.path), 0o700)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	// write to a temporary file first so that a crash never leaves a truncated file behind
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	slog.Debug("CREDENTIAL STORE", "message", "writing credentials file", "path", f.path, "profiles", len(profiles))
	return os.Rename(tmp.Name(), f.path)
}
