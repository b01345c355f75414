package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voicedrop/voicedrop-api/internal/config"
)

type httpProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider returns a client for the hosted ringless-voicemail API
func NewHTTPProvider(cfg config.DeliveryConfig) Provider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &httpProvider{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	To     string `json:"to"`
	Script string `json:"script"`
}

type sendResponse struct {
	DropID string `json:"drop_id"`
	Error  string `json:"error"`
}

func (p *httpProvider) Send(ctx context.Context, phoneNumber, script string) (*Result, error) {
	body, err := json.Marshal(sendRequest{To: phoneNumber, Script: script})
	if err != nil {
		return nil, fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/drops", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery response: %w", err)
	}

	var parsed sendResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode delivery response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &Result{ProviderRef: parsed.DropID}, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		reason := parsed.Error
		if reason == "" {
			reason = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		return nil, &Rejection{Reason: reason}
	default:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
}
