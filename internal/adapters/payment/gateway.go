// Package payment implements the gateway port against an HTTP payment
// provider. The provider holds the actual capture; this adapter only asks
// whether a token has been paid.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"commerce-backoffice/internal/config"
	"commerce-backoffice/internal/core"
)

type httpGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New returns the gateway for the configured provider. Without a gateway URL
// it returns an accept-all gateway so local development and tests do not
// need a provider running.
func New(cfg config.PaymentConfig) core.PaymentGateway {
	if cfg.GatewayURL == "" {
		return acceptAll{}
	}
	return &httpGateway{
		baseURL: cfg.GatewayURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyResponse struct {
	Status     string `json:"status"`
	GatewayTxn string `json:"gateway_txn"`
}

func (g *httpGateway) Verify(ctx context.Context, token string) (string, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", g.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if body.Status != "captured" {
		return "", fmt.Errorf("payment %s is %s, not captured", token, body.Status)
	}
	return body.GatewayTxn, nil
}

// acceptAll confirms every token. Development only.
type acceptAll struct{}

func (acceptAll) Verify(_ context.Context, token string) (string, error) {
	return "dev-" + token, nil
}
