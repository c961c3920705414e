package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

// Resume points the client at an existing session and fetches its state
func (c *Client) Resume(ctx context.Context, id string) (*engine.GameState, error) {
	c.sessionID = id
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("state"), nil, &state); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	return &state, nil
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = info.ID
	return info.GameState, nil
}

func (c *Client) Reset(ctx context.Context) (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// Tokens lists every token of the current cell, closest first
func (c *Client) Tokens(ctx context.Context) (*service.TokensResult, error) {
	var result service.TokensResult
	if err := c.do(ctx, http.MethodGet, c.sessionPath("tokens"), nil, &result); err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return &result, nil
}

func (c *Client) Move(ctx context.Context, dir engine.Direction) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("move"), map[string]string{"direction": string(dir)}, &result); err != nil {
		return nil, fmt.Errorf("move %s: %w", dir, err)
	}
	return &result, nil
}

func (c *Client) Interact(ctx context.Context, key string) (*service.InteractResult, error) {
	var result service.InteractResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("interact"), map[string]string{"token": key}, &result); err != nil {
		return nil, fmt.Errorf("interact %s: %w", key, err)
	}
	return &result, nil
}

func (c *Client) sessionPath(action string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + "/" + action
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
