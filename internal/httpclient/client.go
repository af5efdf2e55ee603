// Package httpclient provides a hardened HTTP client for upstream API calls.
package httpclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quantfold/kagglemcp/errors"
)

// Client wraps http.Client with a scheme allow-list and a redirect cap.
// The Kaggle API redirects dataset and competition downloads to blob
// storage, so redirects are followed but bounded.
type Client struct {
	*http.Client
	allowedSchemes []string
	maxRedirects   int
}

// New creates a hardened HTTP client. Only https is allowed by default.
func New(timeout time.Duration) *Client {
	client := &Client{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		allowedSchemes: []string{"https"},
		maxRedirects:   10,
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return errors.Newf("stopped after %d redirects", client.maxRedirects)
		}
		if err := client.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		// Credentials must not leak to the blob storage host
		req.Header.Del("Authorization")
		return nil
	}

	return client
}

// validateURL rejects requests to URLs outside the allowed schemes.
func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	for _, allowed := range c.allowedSchemes {
		if scheme == allowed {
			return nil
		}
	}
	return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
}
