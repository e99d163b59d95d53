package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/nest-trail/internal/handlers"
	"github.com/jwebster45206/nest-trail/pkg/chat"
	"github.com/jwebster45206/nest-trail/pkg/inventory"
	"github.com/jwebster45206/nest-trail/pkg/stats"
)

// apiClient wraps the HTTP calls to the nest-trail API.
type apiClient struct {
	client  *http.Client
	baseURL string
}

func (a *apiClient) healthy() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (a *apiClient) sendChat(message string) (*chat.ChatResponse, error) {
	jsonData, err := json.Marshal(chat.ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := a.client.Post(a.baseURL+"/v1/chat", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("chat request failed", resp.StatusCode, body)
	}

	var chatResp chat.ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &chatResp, nil
}

func (a *apiClient) getStats() (*stats.Snapshot, error) {
	var snap stats.Snapshot
	if err := a.getJSON("/v1/stats", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (a *apiClient) getInventory() (*inventory.Snapshot, error) {
	var snap inventory.Snapshot
	if err := a.getJSON("/v1/inventory", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (a *apiClient) getToasts(sinceID int64) (*handlers.ToastsResponse, error) {
	var toasts handlers.ToastsResponse
	if err := a.getJSON(fmt.Sprintf("/v1/toasts?since=%d", sinceID), &toasts); err != nil {
		return nil, err
	}
	return &toasts, nil
}

func (a *apiClient) reset() error {
	resp, err := a.client.Post(a.baseURL+"/v1/reset", "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError("reset failed", resp.StatusCode, body)
	}
	return nil
}

func (a *apiClient) getJSON(path string, out any) error {
	resp, err := a.client.Get(a.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError("request failed", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func apiError(prefix string, status int, body []byte) error {
	var errorResp handlers.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s: %s", prefix, errorResp.Error)
}
