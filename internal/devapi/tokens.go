package devapi

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/ledgerline/erp-client/internal/config"
	"github.com/ledgerline/erp-client/internal/models"
)

var errInvalidCredentials = fmt.Errorf("invalid username or password")
var errInvalidRefreshToken = fmt.Errorf("the refresh token is unknown or expired")

type refreshSession struct {
	username  string
	expiresAt time.Time
}

// tokenIssuer hands out HS256 access tokens and opaque refresh tokens for the configured users.
type tokenIssuer struct {
	signingKey      []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	users           map[string]config.RedactedString
	idGenerator     models.IDGenerator
	now             func() time.Time

	lock          sync.Mutex
	refreshTokens map[string]refreshSession
}

func newTokenIssuer(devConfig config.DevAPIConfig) *tokenIssuer {
	return &tokenIssuer{
		signingKey:      []byte(devConfig.SigningKey),
		accessTokenTTL:  devConfig.AccessTokenTTL,
		refreshTokenTTL: devConfig.RefreshTokenTTL,
		users:           devConfig.Users,
		idGenerator:     models.NewRandomGenerator(32),
		now:             time.Now,
		refreshTokens:   map[string]refreshSession{},
	}
}

// login checks the user password and starts a new refresh session.
func (t *tokenIssuer) login(username, password string) (accessToken, refreshToken string, err error) {
	expected, found := t.users[username]
	if !found || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return "", "", errInvalidCredentials
	}
	refreshToken, err = t.idGenerator.ID()
	if err != nil {
		return "", "", err
	}
	accessToken, err = t.accessToken(username)
	if err != nil {
		return "", "", err
	}
	expiresAt := t.currentTime().Add(t.refreshTokenTTL)
	t.lock.Lock()
	t.refreshTokens[refreshToken] = refreshSession{username: username, expiresAt: expiresAt}
	t.lock.Unlock()
	return accessToken, refreshToken, nil
}

// refresh issues a new access token for a live refresh session.
func (t *tokenIssuer) refresh(refreshToken string) (string, error) {
	t.lock.Lock()
	session, found := t.refreshTokens[refreshToken]
	t.lock.Unlock()
	if !found || !t.currentTime().Before(session.expiresAt) {
		return "", errInvalidRefreshToken
	}
	return t.accessToken(session.username)
}

func (t *tokenIssuer) revoke(refreshToken string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.refreshTokens, refreshToken)
}

func (t *tokenIssuer) currentTime() time.Time {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.now()
}

func (t *tokenIssuer) setClock(now func() time.Time) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.now = now
}

func (t *tokenIssuer) accessToken(username string) (string, error) {
	now := t.currentTime()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTokenTTL)),
		ID:        uuid.NewString(),
	})
	return token.SignedString(t.signingKey)
}

// verify returns the user an access token was issued to.
func (t *tokenIssuer) verify(accessToken string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(accessToken, &claims, func(*jwt.Token) (any, error) {
		return t.signingKey, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("the access token has no subject")
	}
	return claims.Subject, nil
}

// purgeExpired drops refresh sessions past their expiry and returns how many were removed.
func (t *tokenIssuer) purgeExpired() int {
	now := t.currentTime()
	t.lock.Lock()
	defer t.lock.Unlock()
	purged := 0
	for token, session := range t.refreshTokens {
		if !now.Before(session.expiresAt) {
			delete(t.refreshTokens, token)
			purged++
		}
	}
	if purged > 0 {
		slog.Debug("DEV API", "message", "purged expired refresh tokens", "count", purged, "remaining", len(t.refreshTokens))
	}
	return purged
}

func (t *tokenIssuer) sessions() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.refreshTokens)
}
