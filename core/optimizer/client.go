package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kereval/fieldops/core/logger"
	"github.com/kereval/fieldops/core/model"
)

// HTTPClient talks to the externally hosted optimizer over JSON/HTTP. The
// optimizer receives the full technician/task snapshot and answers with an
// array of suggested pairings.
type HTTPClient struct {
	url    string
	client *http.Client
	log    logger.Logger
}

// NewHTTPClient creates a client for the given endpoint.
func NewHTTPClient(cfg Config, log logger.Logger) *HTTPClient {
	cfg.SetDefaults()
	return &HTTPClient{
		url:    cfg.URL,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    log,
	}
}

type suggestRequest struct {
	Technicians []model.Technician `json:"technicians"`
	Tasks       []model.Task       `json:"tasks"`
}

// Suggest posts the snapshot and decodes the suggestion list. Transport
// failures and malformed payloads are returned as errors; the gateway treats
// both as "no suggestions".
func (c *HTTPClient) Suggest(ctx context.Context, snap model.Snapshot) ([]Suggestion, error) {
	body, err := json.Marshal(suggestRequest{Technicians: snap.Technicians, Tasks: snap.Tasks})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("optimizer request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warnf("close response body: %v", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("optimizer status %d", resp.StatusCode)
	}

	var sugs []Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&sugs); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	valid := sugs[:0]
	for _, s := range sugs {
		if s.TaskID == "" || s.TechnicianID == "" {
			c.log.Warnf("dropping malformed suggestion %+v", s)
			continue
		}
		valid = append(valid, s)
	}
	return valid, nil
}
