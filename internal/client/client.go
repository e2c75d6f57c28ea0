// Package client is the typed API client for the inventory server. Every
// operation runs through one pipeline: the request phase attaches the bearer
// token read fresh from the credential store, the response phase turns 401s
// into a local sign-out exactly once per stored session.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"inventory-server-go/internal/client/credentials"
	"inventory-server-go/internal/platform/errors"
)

// Logger is the minimal logging surface the client needs. *logging.Logger
// satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Config carries the client collaborators. Everything is injected; the
// client never reaches for process globals.
type Config struct {
	// BaseURL is the API root, e.g. http://127.0.0.1:8080/api. Required.
	BaseURL string
	// HTTPClient issues the requests. Timeouts and transport policy live
	// here, not in the client. Defaults to a fresh http.Client.
	HTTPClient *http.Client
	// Credentials persists the token triple. Defaults to an in-memory
	// store.
	Credentials credentials.Store
	// OnSessionInvalidated fires after a 401 cleared a live credential
	// set. At most one invocation per stored session, however many
	// requests fail concurrently.
	OnSessionInvalidated func()
	// Logger is optional.
	Logger Logger
}

// Client talks to the inventory API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials credentials.Store
	onInvalid   func()
	logger      Logger
}

// New builds a client from cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New(errors.KindConfig, "client.new", "base url is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	store := cfg.Credentials
	if store == nil {
		store = credentials.NewMemory()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient:  httpClient,
		credentials: store,
		onInvalid:   cfg.OnSessionInvalidated,
		logger:      logger,
	}, nil
}

// call runs one request through the pipeline. out may be nil when the
// response body is irrelevant.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.KindTransport, "client.call", method+" "+path+" failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.KindTransport, "client.call", "cannot read response body", err)
	}
	c.logger.Debug("%s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(started).Round(time.Millisecond))

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateSession()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return errors.Wrap(errors.KindTransport, "client.call", "cannot decode response body", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := sonic.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(errors.KindDomain, "client.request", "cannot encode request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(errors.KindTransport, "client.request", "cannot build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	return req, nil
}

// authorize reads the store on every request so a rotated token takes
// effect without rebuilding the client. The identity token is the fallback
// when no access token is stored; with neither, no header is sent.
func (c *Client) authorize(req *http.Request) {
	tokens, err := c.credentials.Load()
	if err != nil {
		c.logger.Warn("credentials load failed: %v", err)
		return
	}

	bearer := tokens.AccessToken
	if bearer == "" {
		bearer = tokens.IDToken
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

// invalidateSession clears the stored triple after a 401. The callback
// fires only when this clear removed a live set, so overlapping 401s
// notify exactly once.
func (c *Client) invalidateSession() {
	removed, err := c.credentials.Clear()
	if err != nil {
		c.logger.Warn("credentials clear failed: %v", err)
		return
	}
	if removed && c.onInvalid != nil {
		c.onInvalid()
	}
}
