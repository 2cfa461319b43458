// Package apiclient implements the HTTP client used to talk to the ERP API. Every request
// carries the access token of the configured credential profile and a request that is
// rejected with a 401 is retried once after the access token is refreshed.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/ledgerline/erp-client/internal/apierrors"
	"github.com/ledgerline/erp-client/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultProfile        string        = "default"
	defaultRefreshPath    string        = "/auth/refresh"
	defaultRefreshTimeout time.Duration = 10 * time.Second
	defaultAccessTokenTTL time.Duration = 24 * time.Hour
	requestIDHeader       string        = "X-Request-ID"
)

type Client struct {
	baseURL        string
	refreshPath    string
	profile        string
	timeout        time.Duration
	refreshTimeout time.Duration
	accessTokenTTL time.Duration
	store          models.CredentialStore
	httpClient     *http.Client
	// rest sends the API calls, refresher only talks to the refresh endpoint and
	// never attaches the access token
	rest         *resty.Client
	refresher    *resty.Client
	refreshGroup singleflight.Group
}

type credentialStoreError struct {
	err error
}

func (e *credentialStoreError) Error() string {
	return fmt.Sprintf("cannot read the access token: %s", e.err)
}

func (e *credentialStoreError) Unwrap() error {
	return e.err
}

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func NewClient(options ...ClientOption) (*Client, error) {
	client := Client{
		profile:        defaultProfile,
		refreshPath:    defaultRefreshPath,
		refreshTimeout: defaultRefreshTimeout,
		accessTokenTTL: defaultAccessTokenTTL,
	}
	for _, opt := range options {
		err := opt(&client)
		if err != nil {
			return nil, err
		}
	}
	if client.baseURL == "" {
		return nil, fmt.Errorf("the API client needs a base URL")
	}
	if client.store == nil {
		return nil, fmt.Errorf("the API client needs a credential store")
	}
	client.rest = client.newResty()
	client.rest.OnBeforeRequest(setRequestID)
	client.rest.SetPreRequestHook(client.authorize)
	client.rest.OnAfterResponse(countResponse)
	client.rest.OnError(countError)
	client.refresher = client.newResty()
	client.refresher.OnBeforeRequest(setRequestID)
	return &client, nil
}

func (c *Client) newResty() *resty.Client {
	var rest *resty.Client
	if c.httpClient != nil {
		rest = resty.NewWithClient(c.httpClient)
	} else {
		rest = resty.New()
	}
	if c.timeout > 0 {
		rest.SetTimeout(c.timeout)
	}
	return rest.SetBaseURL(c.baseURL)
}

// authorize sets the bearer header from the credential store right before the request
// leaves, a missing token is not an error and the request is sent without it.
func (c *Client) authorize(_ *resty.Client, req *http.Request) error {
	token, err := c.store.GetAccessToken(req.Context(), c.profile)
	if errors.Is(err, apierrors.ErrTokenNotFound) {
		slog.Debug("API CLIENT", "message", "no access token found, sending the request without it", "profile", c.profile, "url", req.URL.String())
		return nil
	}
	if err != nil {
		return &credentialStoreError{err}
	}
	oauthToken := oauth2.Token{AccessToken: token.Value, TokenType: "Bearer", Expiry: token.ExpiresAt}
	oauthToken.SetAuthHeader(req)
	return nil
}

func setRequestID(_ *resty.Client, req *resty.Request) error {
	if req.Header.Get(requestIDHeader) == "" {
		req.SetHeader(requestIDHeader, uuid.NewString())
	}
	return nil
}

func countResponse(_ *resty.Client, resp *resty.Response) error {
	requestsTotal.WithLabelValues(resp.Request.Method, strconv.Itoa(resp.StatusCode())).Inc()
	return nil
}

func countError(req *resty.Request, _ error) {
	requestsTotal.WithLabelValues(req.Method, "error").Inc()
}

// Profile returns the credential profile the client reads its tokens from.
func (c *Client) Profile() string {
	return c.profile
}

func (c *Client) CredentialStore() models.CredentialStore {
	return c.store
}

// AccessTokenTTL is the lifetime given to access tokens obtained by the client.
func (c *Client) AccessTokenTTL() time.Duration {
	return c.accessTokenTTL
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends the request. A 401 answer is followed by a refresh of the access token and a
// single retry of the request, unless the request was already retried.
//
// Errors are *apierrors.StatusError for non-2xx answers, *apierrors.TransportError when
// no answer arrived and *apierrors.AuthError when the access token could not be refreshed.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, sentToken, err := c.send(ctx, req)
	if err == nil {
		return resp, nil
	}
	if req.Retried || !apierrors.IsUnauthorized(err) {
		return nil, err
	}

	req.Retried = true
	refreshErr := c.refreshShared(ctx, sentToken, false)
	if errors.Is(refreshErr, apierrors.ErrMissingRefreshToken) {
		return nil, &apierrors.AuthError{Reason: apierrors.ErrMissingRefreshToken, Err: err}
	}
	if refreshErr != nil {
		return nil, refreshErr
	}

	slog.Debug("API CLIENT", "message", "retrying request with refreshed access token", "method", req.Method, "path", req.Path)
	retriesTotal.Inc()
	resp, _, err = c.send(ctx, req)
	return resp, err
}

// Refresh exchanges the stored refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) error {
	err := c.refreshShared(ctx, "", true)
	if errors.Is(err, apierrors.ErrMissingRefreshToken) {
		return &apierrors.AuthError{Reason: apierrors.ErrMissingRefreshToken}
	}
	return err
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	req, err := NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Query = query
	return c.Do(ctx, req)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.doWithBody(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.doWithBody(ctx, http.MethodPut, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.doWithBody(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.doWithBody(ctx, http.MethodDelete, path, nil)
}

func (c *Client) doWithBody(ctx context.Context, method, path string, body any) (*Response, error) {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// send issues the request once and returns the access token it carried.
func (c *Client) send(ctx context.Context, req *Request) (*Response, string, error) {
	restReq := c.rest.R().SetContext(ctx)
	for key, values := range req.Header {
		for _, value := range values {
			restReq.Header.Add(key, value)
		}
	}
	if len(req.Query) > 0 {
		restReq.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		restReq.SetBody(req.Body)
	}

	resp, err := restReq.Execute(req.Method, req.Path)
	if err != nil {
		var storeErr *credentialStoreError
		if errors.As(err, &storeErr) {
			return nil, "", storeErr
		}
		return nil, "", &apierrors.TransportError{Method: req.Method, URL: c.baseURL + req.Path, Err: err}
	}
	sentToken := ""
	if resp.Request.RawRequest != nil {
		sentToken = strings.TrimPrefix(resp.Request.RawRequest.Header.Get("Authorization"), "Bearer ")
	}
	if !resp.IsSuccess() {
		return nil, sentToken, &apierrors.StatusError{
			Method:     req.Method,
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Body:       resp.Body(),
		}
	}
	return &Response{StatusCode: resp.StatusCode(), Header: resp.Header(), Body: resp.Body()}, sentToken, nil
}

// refreshShared makes concurrent callers of the same profile wait for a single refresh.
// The refresh runs detached from the cancellation of the caller that started it and is
// bounded by the refresh timeout, a caller whose context ends stops waiting for it.
// Forced refreshes are grouped separately so they never reuse a refresh that skipped.
func (c *Client) refreshShared(ctx context.Context, staleToken string, force bool) error {
	key := c.profile
	if force {
		key += ":force"
	}
	result := c.refreshGroup.DoChan(key, func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()
		return nil, c.refresh(refreshCtx, staleToken, force)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-result:
		return res.Err
	}
}

// refresh replaces the stored access token. Unless forced it does nothing when the store
// already holds an access token other than the rejected one. On failure both tokens are
// removed from the store.
func (c *Client) refresh(ctx context.Context, staleToken string, force bool) error {
	if !force {
		current, err := c.store.GetAccessToken(ctx, c.profile)
		if err == nil && current.Value != staleToken {
			tokenRefreshTotal.WithLabelValues(refreshOutcomeSkipped).Inc()
			slog.Debug("TOKEN REFRESH", "message", "access token was already replaced, skipping refresh", "profile", c.profile)
			return nil
		}
	}

	refreshToken, err := c.store.GetRefreshToken(ctx, c.profile)
	if errors.Is(err, apierrors.ErrTokenNotFound) {
		tokenRefreshTotal.WithLabelValues(refreshOutcomeMissingToken).Inc()
		slog.Info("TOKEN REFRESH", "message", "no refresh token available", "profile", c.profile)
		return apierrors.ErrMissingRefreshToken
	}
	if err != nil {
		return fmt.Errorf("cannot read the refresh token: %w", err)
	}

	value, err := c.requestAccessToken(ctx, refreshToken)
	if err != nil {
		tokenRefreshTotal.WithLabelValues(refreshOutcomeFailure).Inc()
		slog.Info("TOKEN REFRESH", "message", "refresh failed, clearing stored tokens", "profile", c.profile, "error", err)
		clearErr := models.RemoveTokens(ctx, c.store, c.profile)
		if clearErr != nil {
			slog.Error("TOKEN REFRESH", "message", "cannot clear the stored tokens", "profile", c.profile, "error", clearErr)
		}
		return &apierrors.AuthError{Reason: apierrors.ErrRefreshFailed, Err: err}
	}

	accessToken := models.AuthToken{
		ID:        c.profile,
		Value:     value,
		ExpiresAt: time.Now().UTC().Add(c.accessTokenTTL),
		Type:      models.AccessTokenType,
	}
	err = c.store.SetAccessToken(ctx, accessToken)
	if err != nil {
		tokenRefreshTotal.WithLabelValues(refreshOutcomeFailure).Inc()
		return fmt.Errorf("cannot store the refreshed access token: %w", err)
	}
	tokenRefreshTotal.WithLabelValues(refreshOutcomeSuccess).Inc()
	slog.Debug("TOKEN REFRESH", "message", "access token refreshed", "token", accessToken)
	return nil
}

func (c *Client) requestAccessToken(ctx context.Context, refreshToken models.AuthToken) (string, error) {
	resp, err := c.refresher.R().
		SetContext(ctx).
		SetBody(refreshRequest{Token: refreshToken.Value}).
		Post(c.refreshPath)
	if err != nil {
		return "", &apierrors.TransportError{Method: http.MethodPost, URL: c.baseURL + c.refreshPath, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &apierrors.StatusError{
			Method:     http.MethodPost,
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Body:       resp.Body(),
		}
	}
	var body refreshResponse
	err = json.Unmarshal(resp.Body(), &body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apierrors.ErrUnexpectedResponse, err)
	}
	if body.AccessToken == "" {
		return "", apierrors.ErrMissingAccessToken
	}
	return body.AccessToken, nil
}
