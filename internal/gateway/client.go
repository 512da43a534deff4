// Package gateway is the outbound HTTP binding for the marketplace backend.
// It translates transport failures into coded errors and leaves degrade
// policy (empty cart, keep-last-known) to the callers.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sellpoint-ua/cart-engine/internal/credentials"
	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/logger"
	"github.com/sellpoint-ua/cart-engine/pkg/metrics"
)

const (
	defaultBaseURL            = "https://api.sellpoint.pp.ua"
	responseBodyReadLimit     = 4096
	defaultRequestTimeout     = 10 * time.Second
	authorizationHeaderScheme = "Bearer"
)

// Client talks to the marketplace REST backend.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	credentials credentials.Provider
	log         *logger.Logger
	metrics     *metrics.GatewayMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics attaches gateway request metrics.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient builds the backend client around the injected token source.
func NewClient(creds credentials.Provider, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, fmt.Errorf("credential provider required")
	}

	client := &Client{
		credentials: creds,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// bearerToken resolves the current token or reports the sign-in requirement.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	token, ok := c.credentials.Token(ctx)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeUnauthenticated, "no bearer token available")
	}
	return token, nil
}

// doJSON executes the request, records metrics, and checks for a 2xx status.
// The caller decodes the body from the returned response and must close it.
func (c *Client) do(ctx context.Context, operation string, req *http.Request) (*http.Response, error) {
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(operation, time.Since(started))
	if err != nil {
		c.metrics.IncFailure(operation)
		if c.log != nil {
			c.log.Error(ctx, "gateway request failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", operation))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		c.metrics.IncFailure(operation)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
		}
		if c.log != nil {
			c.log.Warn(c.log.WithField(ctx, "status", resp.StatusCode), "gateway request rejected")
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, message).WithDetails(resp.StatusCode)
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, message).WithDetails(resp.StatusCode)
	}

	c.metrics.IncSuccess(operation)
	return resp, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func setBearer(req *http.Request, token string) {
	req.Header.Set("Authorization", authorizationHeaderScheme+" "+token)
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
	_ = resp.Body.Close()
}
