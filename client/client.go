// Package client is a Go client for the items http api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
	"github.com/giovaniif/items/infra/retry"
)

// APIError is returned for responses the client has no sentinel for.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("items api: %d %s", e.StatusCode, e.Message)
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      retry.Policy
}

type Option func(*Client)

// WithRetry retries Get, Update and Delete on timeouts and 5xx responses.
// Create is never retried, a replayed POST would report "already exists".
func WithRetry(policy retry.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// New returns a client for the api rooted at baseURL (e.g. http://localhost:5000).
func New(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		retry:      retry.Policy{MaxRetries: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.Retriable = infra.IsRetriable
	return c
}

func (c *Client) Get(ctx context.Context, itemId string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, itemId, nil, http.StatusOK)
}

func (c *Client) Create(ctx context.Context, itemId string, data map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, itemId, data, http.StatusCreated)
}

func (c *Client) Update(ctx context.Context, itemId string, data map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, itemId, data, http.StatusOK)
}

func (c *Client) Delete(ctx context.Context, itemId string) error {
	_, err := c.do(ctx, http.MethodDelete, itemId, nil, http.StatusNoContent)
	return err
}

func (c *Client) do(ctx context.Context, method, itemId string, payload map[string]any, expected int) (map[string]any, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var payloadBytes []byte
	if payload != nil {
		var err error
		if payloadBytes, err = json.Marshal(payload); err != nil {
			return nil, err
		}
	}
	if method == http.MethodPost {
		return c.send(ctx, method, itemId, payloadBytes, expected)
	}

	var data map[string]any
	err := retry.WithBackoff(ctx, c.retry, func(ctx context.Context) error {
		var err error
		data, err = c.send(ctx, method, itemId, payloadBytes, expected)
		return err
	})
	return data, err
}

func (c *Client) send(ctx context.Context, method, itemId string, payloadBytes []byte, expected int) (map[string]any, error) {
	var body io.Reader
	if payloadBytes != nil {
		body = bytes.NewReader(payloadBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/items/"+url.PathEscape(itemId), body)
	if err != nil {
		return nil, err
	}
	if payloadBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		return nil, responseError(method, resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	data, err := item.ParseData(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	return data, nil
}

func responseError(method string, resp *http.Response) error {
	var msg errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&msg)

	switch {
	case resp.StatusCode == http.StatusNotFound && msg.Error == "Item not found":
		return item.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest && msg.Error == "Item already exists":
		return item.ErrAlreadyExists
	case resp.StatusCode == http.StatusGatewayTimeout:
		return infra.NewTimeoutError(method + " item")
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return fmt.Errorf("%w: %w", infra.NewNetworkError(method+" item"), &APIError{StatusCode: resp.StatusCode, Message: msg.Error})
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg.Error}
}
