package infra

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

	"github.com/Vovarama1992/voice-relay/internal/preview"
	"golang.org/x/text/language"
)

type AzureTranslator struct {
	endpoint string
	client   *http.Client
}

func NewAzureTranslator(endpoint string) *AzureTranslator {
	return &AzureTranslator{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type trRequestItem struct {
	Text string `json:"Text"`
}

type trResponseItem struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// translatorCode maps a speech locale to the code the Translator API expects:
// the bare language, except Chinese which is keyed by script.
func translatorCode(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	base, _ := tag.Base()
	if base.String() == "zh" {
		script, _ := tag.Script()
		return "zh-" + script.String()
	}
	return base.String()
}

func (t *AzureTranslator) Translate(ctx context.Context, key, region, text, from, to string) (string, error) {
	q := url.Values{}
	q.Set("api-version", "3.0")
	q.Set("from", translatorCode(from))
	q.Set("to", translatorCode(to))

	body, err := json.Marshal([]trRequestItem{{Text: text}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/translate?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", key)
	req.Header.Set("Ocp-Apim-Subscription-Region", region)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translator request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator http %d: %s", resp.StatusCode, preview.Text(string(raw), 200))
	}

	var parsed []trResponseItem
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("translator decode: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		return "", fmt.Errorf("translator: empty result")
	}
	return parsed[0].Translations[0].Text, nil
}
