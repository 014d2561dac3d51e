// http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sphinx-core/spxverify/src/core/sphincs/batch"
)

// Client talks to a verification server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at address, e.g. "localhost:8080".
func NewClient(address string) *Client {
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	return &Client{baseURL: strings.TrimSuffix(address, "/"), http: http.DefaultClient}
}

// Verify submits one verification request.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*batch.Result, error) {
	var res batch.Result
	if err := c.post(ctx, "/verify", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyBatch submits several verification requests.
func (c *Client) VerifyBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	var res BatchResponse
	if err := c.post(ctx, "/verify/batch", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			return fmt.Errorf("server returned %s", resp.Status)
		}
		return fmt.Errorf("server returned %s: %s", resp.Status, e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
