// Package kafkaconnect deploys a compiled connector configuration to a
// Kafka Connect REST endpoint and probes cluster reachability. Like the
// other adapters it is an external collaborator: it receives the flat
// property map the artifact compiler produced and never touches the
// catalog.
package kafkaconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client deploys connector configurations to one Kafka Connect REST
// endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client against a Connect REST endpoint
// (`http://<connect_host>:<connect_port>`).
func NewClient(host string, port int) *Client {
	return &Client{
		BaseURL:    fmt.Sprintf("http://%s:%d", host, port),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Deploy PUTs a connector's compiled configuration to
// `/connectors/{name}/config`, the idempotent upsert endpoint Kafka
// Connect exposes.
func (c *Client) Deploy(ctx context.Context, name string, config map[string]string) error {
	body, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode connector config: %w", err)
	}

	url := fmt.Sprintf("%s/connectors/%s/config", c.BaseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build connect deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("deploy connector %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("deploy connector %q: connect returned %d: %s", name, resp.StatusCode, detail)
	}
	return nil
}

// Status queries `/connectors/{name}/status`.
func (c *Client) Status(ctx context.Context, name string) (string, error) {
	url := fmt.Sprintf("%s/connectors/%s/status", c.BaseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build connect status request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query status for connector %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status for connector %q: connect returned %d: %s", name, resp.StatusCode, detail)
	}

	var payload struct {
		Connector struct {
			State string `json:"state"`
		} `json:"connector"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode status for connector %q: %w", name, err)
	}
	return payload.Connector.State, nil
}
