package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type ClientConfig struct {
	// BaseURL is the API root. A relative value such as "/api" is resolved against Origin.
	BaseURL        string
	Origin         *url.URL
	RefreshPath    string
	Timeout        time.Duration
	RefreshTimeout time.Duration
}

// ResolvedBaseURL returns the absolute API root without a trailing slash.
func (c ClientConfig) ResolvedBaseURL() (*url.URL, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("cannot parse the client base URL %q: %w", c.BaseURL, err)
	}
	if !base.IsAbs() {
		if c.Origin == nil {
			return nil, fmt.Errorf("the client base URL %q is relative and no origin is configured", c.BaseURL)
		}
		base = c.Origin.ResolveReference(base)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return base, nil
}

func (c ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("the client base URL cannot be empty")
	}
	if _, err := c.ResolvedBaseURL(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.RefreshPath, "/") {
		return fmt.Errorf("the refresh path %q has to start with a slash", c.RefreshPath)
	}
	if c.Timeout < 0 || c.RefreshTimeout <= 0 {
		return fmt.Errorf("invalid client timeouts (timeout %s, refresh timeout %s)", c.Timeout, c.RefreshTimeout)
	}
	return nil
}
