package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/loupeteam/lpm/pkg/buildinfo"
	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
	"github.com/loupeteam/lpm/pkg/httputil"
)

// DefaultURL is the registry hosting the scope's packages.
const DefaultURL = "https://npm.pkg.github.com"

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the registry does not know a package.
	ErrNotFound = errors.New("package not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the registry rejects the token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Client looks packages up in an npm registry.
type Client struct {
	http    *http.Client
	cache   *httputil.Cache
	baseURL string
	headers map[string]string
	retry   func(context.Context, func() error) error
	Logger  *log.Logger
}

var _ deps.Registry = (*Client)(nil)

// NewClient returns a Client for the registry at baseURL. An empty baseURL
// means DefaultURL. The token, when set, is sent as a bearer token. Answers
// are cached in cache; pass nil to disable caching. If logger is nil,
// log.Default() is used.
func NewClient(baseURL, token string, cache *httputil.Cache, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if logger == nil {
		logger = log.Default()
	}
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if cache != nil {
		cache = cache.Namespace("exists:")
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   cache,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: headers,
		retry:   httputil.RetryWithBackoff,
		Logger:  logger,
	}
}

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

type existsEntry struct {
	Exists bool `json:"exists"`
}

// Exists reports whether the registry knows ref.
func (c *Client) Exists(ctx context.Context, ref deps.Reference) (bool, error) {
	key := strings.ToLower(ref.FullName())
	var entry existsEntry
	err := c.cached(ctx, key, &entry, func() error {
		err := c.get(ctx, c.PackageURL(ref))
		switch {
		case err == nil:
			entry.Exists = true
		case errors.Is(err, ErrNotFound):
			entry.Exists = false
		default:
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, lpmerrors.Wrap(lpmerrors.ErrCodeUnauthorized, err, "look up %s", key)
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, lpmerrors.Wrap(lpmerrors.ErrCodeNetwork, err, "look up %s", key)
	}
	c.Logger.Debug("registry lookup", "package", key, "exists", entry.Exists)
	return entry.Exists, nil
}

// PackageURL returns the registry document URL of ref. The scope separator
// is escaped as npm registries expect.
func (c *Client) PackageURL(ref deps.Reference) string {
	return c.baseURL + "/" + strings.Replace(strings.ToLower(ref.FullName()), "/", "%2f", 1)
}

func (c *Client) cached(ctx context.Context, key string, v any, fetch func() error) error {
	if c.cache != nil {
		if ok, _ := c.cache.Get(key, v); ok {
			return nil
		}
	}
	if err := c.retry(ctx, fetch); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Set(key, v); err != nil {
			c.Logger.Debug("cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return checkStatus(resp.StatusCode)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
