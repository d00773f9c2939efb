// Package network wraps a browser-fingerprinted HTTP client with proxy
// rotation and per-host pacing for the job board scrapers.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

var ErrRequestFailed = errors.New("request failed")

// maxBodyBytes bounds how much of a single page is read into memory.
const maxBodyBytes = 8 << 20

type Client struct {
	http       tls_client.HttpClient
	rotator    *Rotator
	limiter    *HostLimiter
	userAgents []string

	mu   sync.Mutex
	rand *rand.Rand
}

// Option customizes a Client.
type Option func(*Client)

// WithLimiter paces requests per host.
func WithLimiter(limiter *HostLimiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

func NewClient(rotator *Rotator, opts ...Option) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(30),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	c := &Client{
		http:       client,
		rotator:    rotator,
		userAgents: append([]string{}, userAgents...),
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends req through the next healthy proxy and reports blocking
// responses back to the rotator.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context(), req.URL.Host); err != nil {
			return nil, err
		}
	}

	proxy := c.rotateProxy()
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.randomUA())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	return resp, nil
}

// Get fetches rawURL and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrRequestFailed, rawURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// rotateProxy swaps the client's proxy when a rotator is configured. With no
// usable proxy the request goes out directly.
func (c *Client) rotateProxy() *url.URL {
	if c.rotator == nil || c.rotator.Len() == 0 {
		return nil
	}
	proxy, err := c.rotator.Next()
	if err != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.http.SetProxy(proxy.String()); err != nil {
		return nil
	}
	return proxy
}

func (c *Client) randomUA() string {
	if len(c.userAgents) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgents[c.rand.Intn(len(c.userAgents))]
}
