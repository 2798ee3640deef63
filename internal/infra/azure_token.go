package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/Vovarama1992/voice-relay/internal/preview"
)

// AzureTokenClient calls the Cognitive Services STS issueToken endpoint.
type AzureTokenClient struct {
	endpoint string // %s = region
	client   *http.Client
}

func NewAzureTokenClient(endpoint string) ports.TokenExchanger {
	return &AzureTokenClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *AzureTokenClient) Exchange(ctx context.Context, key, region string) (string, error) {
	url := fmt.Sprintf(c.endpoint, region)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", key)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("azure token read: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("azure token http %d: %s", resp.StatusCode, preview.Text(string(body), 200))
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", fmt.Errorf("azure token: empty body")
	}
	return token, nil
}
