package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ledgerline/erp-client/internal/apiclient"
	"github.com/ledgerline/erp-client/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Auth logs a credential profile in and out of the ERP API.
type Auth struct {
	client         *apiclient.Client
	store          models.CredentialStore
	profile        string
	accessTokenTTL time.Duration
}

func NewAuth(client *apiclient.Client) *Auth {
	return &Auth{
		client:         client,
		store:          client.CredentialStore(),
		profile:        client.Profile(),
		accessTokenTTL: client.AccessTokenTTL(),
	}
}

// Login exchanges the user credentials for a token pair and stores it under the client profile.
func (a *Auth) Login(ctx context.Context, username, password string) error {
	req, err := apiclient.NewRequest(http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	// wrong credentials answer with a 401 that must not trigger a refresh
	req.Retried = true
	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return err
	}
	var body loginResponse
	if err := resp.Decode(&body); err != nil {
		return fmt.Errorf("cannot parse the login response: %w", err)
	}
	if body.AccessToken == "" || body.RefreshToken == "" {
		return fmt.Errorf("the login response did not contain a token pair")
	}

	err = a.store.SetRefreshToken(ctx, models.AuthToken{
		ID:    a.profile,
		Value: body.RefreshToken,
		Type:  models.RefreshTokenType,
	})
	if err != nil {
		return err
	}
	err = a.store.SetAccessToken(ctx, models.AuthToken{
		ID:        a.profile,
		Value:     body.AccessToken,
		ExpiresAt: time.Now().UTC().Add(a.accessTokenTTL),
		Type:      models.AccessTokenType,
	})
	if err != nil {
		return err
	}
	slog.Info("LOGIN", "message", "logged in", "profile", a.profile, "username", username)
	return nil
}

// Logout removes the token pair of the client profile.
func (a *Auth) Logout(ctx context.Context) error {
	err := models.RemoveTokens(ctx, a.store, a.profile)
	if err != nil {
		return err
	}
	slog.Info("LOGOUT", "message", "removed stored tokens", "profile", a.profile)
	return nil
}
