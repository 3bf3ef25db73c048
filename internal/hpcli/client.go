package hpcli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client wraps API calls.
type Client struct {
	BaseURL string
	Timeout time.Duration
}

func (c *Client) do(req *http.Request, target interface{}) error {
	httpClient := &http.Client{Timeout: c.Timeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(body))
		if detail != "" {
			return fmt.Errorf("%s %s failed: %s: %s", req.Method, req.URL.Path, resp.Status, detail)
		}
		return fmt.Errorf("%s %s failed: %s", req.Method, req.URL.Path, resp.Status)
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetJSON fetches path and decodes the JSON response into target.
func (c *Client) GetJSON(path string, target interface{}) error {
	base := strings.TrimRight(c.BaseURL, "/")
	req, err := http.NewRequest(http.MethodGet, base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, target)
}

// PostJSON posts payload to path and decodes the JSON response into target.
func (c *Client) PostJSON(path string, payload interface{}, target interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.PostRawJSON(path, data, target)
}

// PostRawJSON posts a pre-encoded JSON body to path.
func (c *Client) PostRawJSON(path string, payload []byte, target interface{}) error {
	base := strings.TrimRight(c.BaseURL, "/")
	req, err := http.NewRequest(http.MethodPost, base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, target)
}
