// Package gateway is the emulator's HTTP client to the fog server.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// Client talks to the fog server REST API. Safe for use from a single
// emulator loop; the underlying http.Client is reused across calls.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SendTelemetry posts a GPU/fan telemetry payload.
func (c *Client) SendTelemetry(ctx context.Context, payload *domain.TelemetryPayload) error {
	return c.postJSON(ctx, "/api/v1/telemetry", payload)
}

// SendEnvironmental posts a humidity/dust payload.
func (c *Client) SendEnvironmental(ctx context.Context, payload *domain.EnvironmentalPayload) error {
	return c.postJSON(ctx, "/api/v1/telemetry/environmental", payload)
}

// FetchFanCommands pops the pending fan batch for the device. A 204
// response means no command is waiting and returns (nil, nil).
func (c *Client) FetchFanCommands(ctx context.Context, deviceID string) (*domain.FanControlBatch, error) {
	var batch domain.FanControlBatch
	ok, err := c.getJSON(ctx, "/api/v1/fan-control/"+deviceID, &batch)
	if err != nil || !ok {
		return nil, err
	}
	return &batch, nil
}

// FetchEnvCommand pops the pending environmental command for the device.
func (c *Client) FetchEnvCommand(ctx context.Context, deviceID string) (*domain.EnvironmentalCommand, error) {
	var cmd domain.EnvironmentalCommand
	ok, err := c.getJSON(ctx, "/api/v1/env-control/"+deviceID, &cmd)
	if err != nil || !ok {
		return nil, err
	}
	return &cmd, nil
}

// FetchProfile returns the environmental profile id the server expects
// the device to run.
func (c *Client) FetchProfile(ctx context.Context) (int, error) {
	var resp struct {
		ProfileID int `json:"profile_id"`
	}
	ok, err := c.getJSON(ctx, "/api/v1/profile", &resp)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("profile endpoint returned no content")
	}
	return resp.ProfileID, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// getJSON returns ok=false on a 204 without touching out.
func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("GET %s: %w", path, err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusNoContent:
		return false, nil
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("GET %s: decode response: %w", path, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
}

// drain empties and closes the body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
