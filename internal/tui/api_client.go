package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"guildhall/internal/chatitem"
	"guildhall/internal/entity"
)

// APIError is a non 2xx answer of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

var ErrUnauthorized = errors.New("not identified")

// Snapshot is the channel content as returned by GET /api/messages.
type Snapshot struct {
	Viewer   *entity.Member   `json:"viewer"`
	Channel  *entity.Channel  `json:"channel"`
	Messages []entity.Message `json:"messages"`
}

// APIClient talks to the HTTP surface and keeps the session cookie.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) (*APIClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (c *APIClient) BaseURL() string {
	return c.baseURL
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}

func (c *APIClient) Identify(ctx context.Context, name string) (*entity.Profile, error) {
	var out struct {
		Profile entity.Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/profiles", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

func (c *APIClient) Messages(ctx context.Context, route chatitem.Route) (*Snapshot, error) {
	var snap Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/messages?"+route.Query().Encode(), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *APIClient) Send(ctx context.Context, route chatitem.Route, content string) (*entity.Message, error) {
	var msg entity.Message
	if err := c.do(ctx, http.MethodPost, "/api/messages?"+route.Query().Encode(), map[string]string{"content": content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateMessage sends the edited body to the message endpoint.
func (c *APIClient) UpdateMessage(ctx context.Context, route chatitem.Route, messageID, content string) (*entity.Message, error) {
	var msg entity.Message
	if err := c.do(ctx, http.MethodPatch, route.MessageURL(messageID), map[string]string{"content": content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage performs a confirmed deletion and returns the tombstone.
func (c *APIClient) DeleteMessage(ctx context.Context, req chatitem.DeleteRequest) (*entity.Message, error) {
	var msg entity.Message
	if err := c.do(ctx, http.MethodDelete, req.URL, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
