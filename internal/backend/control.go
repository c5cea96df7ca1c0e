package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ControlURL derives the backend's out-of-band stop endpoint from the
// streaming channel address: ws becomes http, wss becomes https, and the
// /ws path segment becomes /stop.
func ControlURL(wsURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(wsURL))
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("unsupported backend url scheme %q", u.Scheme)
	}
	u.Path = strings.Replace(u.Path, "/ws", "/stop", 1)
	return u.String(), nil
}

// ControlClient issues the single stop request that cancels a running
// backend task, independently of any open streaming channel.
type ControlClient struct {
	url    string
	client *http.Client
}

func NewControlClient(wsURL string) (*ControlClient, error) {
	stopURL, err := ControlURL(wsURL)
	if err != nil {
		return nil, err
	}
	return &ControlClient{
		url: stopURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type controlResponse struct {
	Status string `json:"status"`
}

// Stop signals the backend to cancel the running task and returns the
// status field from its response.
func (c *ControlClient) Stop(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create stop request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send stop request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("stop endpoint status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed controlResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode stop response: %w", err)
	}
	if strings.TrimSpace(parsed.Status) == "" {
		return "", errors.New("stop response missing status")
	}
	return parsed.Status, nil
}
