// Package pathstore is a client for the pathstore key/value service where
// parsed interchanges are persisted.
package pathstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"
)

// RetryableError marks failures worth retrying: throttling, server errors
// and transport failures.
type RetryableError struct {
	StatusCode int
	Err        error
}

func (e *RetryableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retryable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("retryable: %v", e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// statusError builds the error for an unexpected response.
func statusError(op string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Err: err}
	}
	return err
}

// Client communicates with the pathstore HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NodeRequest is the body for PUT /kv/{key}.
type NodeRequest struct {
	Value  any    `json:"value"`
	Source string `json:"source,omitempty"`
}

// Node is a stored value as returned by GET /kv/{key} and prefix scans.
type Node struct {
	Key   string `json:"key_path"`
	Value any    `json:"value"`
}

// LinkRequest is the body for PUT /links.
type LinkRequest struct {
	From    string  `json:"from_key"`
	To      string  `json:"to_key"`
	Weight  float64 `json:"weight"`
	Summary string  `json:"summary,omitempty"`
}

// do sends one request and returns the response when its status is in ok.
// Any other status is turned into an error and the body is closed.
func (c *Client) do(ctx context.Context, op, method, path string, body any, ok ...int) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%s: %w", op, err)}
	}
	if !slices.Contains(ok, resp.StatusCode) {
		defer resp.Body.Close()
		return nil, statusError(op, resp)
	}
	return resp, nil
}

// PutNode stores or replaces the node at key.
func (c *Client) PutNode(ctx context.Context, key string, req NodeRequest) error {
	resp, err := c.do(ctx, "put node "+key, http.MethodPut, "/kv/"+key, req, http.StatusOK, http.StatusCreated)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// GetNode retrieves a node by key. A missing node is (nil, nil).
func (c *Client) GetNode(ctx context.Context, key string) (*Node, error) {
	resp, err := c.do(ctx, "get node "+key, http.MethodGet, "/kv/"+key, nil, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	var node Node
	if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return &node, nil
}

// DeleteNode deletes a node, and its whole subtree when recursive is set.
func (c *Client) DeleteNode(ctx context.Context, key string, recursive bool) error {
	path := "/kv/" + key
	if recursive {
		path += "?children=true"
	}
	resp, err := c.do(ctx, "delete node "+key, http.MethodDelete, path, nil, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// ListChildren does a prefix scan under key, returning at most limit nodes
// when limit is positive.
func (c *Client) ListChildren(ctx context.Context, key string, limit int) ([]Node, error) {
	path := "/kv/" + key + "/*"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(strconv.Itoa(limit))
	}
	resp, err := c.do(ctx, "list children "+key, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Nodes []Node `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	return result.Nodes, nil
}

// PutLink creates or updates an edge between two nodes.
func (c *Client) PutLink(ctx context.Context, req LinkRequest) error {
	resp, err := c.do(ctx, "put link", http.MethodPut, "/links", req, http.StatusOK, http.StatusCreated)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Close drops idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
