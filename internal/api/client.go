package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenFunc supplies the current bearer token. An empty string means no
// Authorization header is sent.
type TokenFunc func() string

// Client is the transport wrapper shared by all gateway operations: it owns
// the base URL, injects the bearer header and turns non-2xx responses into
// *Error values. No timeout is set; callers cancel via context.
type Client struct {
	baseURL string
	client  *http.Client
	token   TokenFunc
}

func NewClient(baseURL string, token TokenFunc) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		token:   token,
	}
}

// Do performs one API call. body, when non-nil, is JSON-encoded; out, when
// non-nil, receives the decoded response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError reads an error body of the form {"code": 4011, "message": "..."}.
// Bodies that are not JSON still produce an *Error with the raw text.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && (payload.Code != 0 || payload.Message != "") {
		return &Error{StatusCode: resp.StatusCode, Code: payload.Code, Message: payload.Message}
	}
	return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}
