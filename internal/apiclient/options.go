package apiclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ledgerline/erp-client/internal/config"
	"github.com/ledgerline/erp-client/internal/models"
)

type ClientOption func(*Client) error

// WithConfig sets the base URL, the refresh endpoint and the timeouts.
func WithConfig(clientConfig config.ClientConfig) ClientOption {
	return func(c *Client) error {
		base, err := clientConfig.ResolvedBaseURL()
		if err != nil {
			return err
		}
		c.baseURL = base.String()
		if clientConfig.RefreshPath != "" {
			c.refreshPath = clientConfig.RefreshPath
		}
		c.timeout = clientConfig.Timeout
		if clientConfig.RefreshTimeout > 0 {
			c.refreshTimeout = clientConfig.RefreshTimeout
		}
		return nil
	}
}

// WithCredentialsConfig sets the profile the tokens are stored under and the lifetime
// given to refreshed access tokens.
func WithCredentialsConfig(credConfig config.CredentialsConfig) ClientOption {
	return func(c *Client) error {
		if credConfig.ID != "" {
			c.profile = credConfig.ID
		}
		if credConfig.AccessTokenTTL > 0 {
			c.accessTokenTTL = credConfig.AccessTokenTTL
		}
		return nil
	}
}

func WithCredentialStore(store models.CredentialStore) ClientOption {
	return func(c *Client) error {
		if store == nil {
			return fmt.Errorf("the credential store cannot be nil")
		}
		c.store = store
		return nil
	}
}

// WithHTTPClient sends the API and refresh calls through httpClient, its transport and
// cookie jar are kept, the timeout is overwritten when one is configured.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = httpClient
		return nil
	}
}

func WithProfile(profile string) ClientOption {
	return func(c *Client) error {
		if profile == "" {
			return fmt.Errorf("the credential profile cannot be empty")
		}
		c.profile = profile
		return nil
	}
}

func WithAccessTokenTTL(ttl time.Duration) ClientOption {
	return func(c *Client) error {
		if ttl <= 0 {
			return fmt.Errorf("the access token lifetime has to be positive, got %s", ttl)
		}
		c.accessTokenTTL = ttl
		return nil
	}
}
