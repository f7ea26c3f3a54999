package fetch

import (
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"podarchive/pkg/config"
)

// NewClient creates the shared redirect-following HTTP client from the
// provided configuration. Media hosts chain through trackers and CDNs, so
// the redirect cap is generous but firm - an unbounded chain must not hang
// a run.
func NewClient(cfg *config.AppConfig, log *logrus.Entry) *http.Client {
	// Create custom dialer with configured timeouts
	dialer := &net.Dialer{
		Timeout:   cfg.HTTPClientSettings.DialerTimeout,
		KeepAlive: cfg.HTTPClientSettings.DialerKeepAlive,
	}

	// Create custom transport using configured settings
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment, // Use system proxy settings
		DialContext:            dialer.DialContext,
		ForceAttemptHTTP2:      true, // Default to true unless explicitly disabled
		MaxIdleConns:           cfg.HTTPClientSettings.MaxIdleConns,
		MaxIdleConnsPerHost:    cfg.HTTPClientSettings.MaxIdleConnsPerHost,
		IdleConnTimeout:        cfg.HTTPClientSettings.IdleConnTimeout,
		TLSHandshakeTimeout:    cfg.HTTPClientSettings.TLSHandshakeTimeout,
		MaxResponseHeaderBytes: 1 << 20, // 1MB max header size
	}
	if cfg.HTTPClientSettings.ForceAttemptHTTP2 != nil {
		transport.ForceAttemptHTTP2 = *cfg.HTTPClientSettings.ForceAttemptHTTP2
	}

	maxHops := cfg.MaxRedirects
	client := &http.Client{
		Timeout:   cfg.HTTPClientSettings.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxHops {
				return fmt.Errorf("stopped after %d redirects", maxHops)
			}
			log.Debugf("Redirecting: %s -> %s (hop %d)", via[len(via)-1].URL, req.URL, len(via))
			return nil // Allow redirect
		},
	}
	return client
}
