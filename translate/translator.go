package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/logger"
)

// Translator turns Chinese text into English. isTitle selects a short,
// headline-style rendering instead of a literal one.
type Translator interface {
	Translate(ctx context.Context, text string, isTitle bool) (string, error)
}

const (
	rateLimitWait = 60 * time.Second
	maxAttempts   = 3
)

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// HTTPTranslator calls a generateContent-style endpoint. A 429 or a
// quota error pauses the caller for a minute before retrying.
type HTTPTranslator struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

// NewHTTPTranslator builds a translator from the configured endpoint
// and API key.
func NewHTTPTranslator(cfg *config.Config) *HTTPTranslator {
	client := resty.New().
		SetTimeout(2 * time.Minute).
		SetHeader("Content-Type", "application/json")
	return &HTTPTranslator{
		client:   client,
		endpoint: cfg.Translate.Endpoint,
		apiKey:   cfg.Translate.APIKey,
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text string, isTitle bool) (string, error) {
	prompt := "Translate the following Chinese text to English. Reply with only the translation, no explanations:\n\n" + text
	if isTitle {
		prompt = "Translate this Chinese title to a concise English title. Reply with only the title:\n\n" + text
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := t.generate(ctx, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRateLimited(err) {
			return "", err
		}
		logger.Logger.Printf("Translation rate limited, waiting %s (attempt %d/%d)", rateLimitWait, attempt, maxAttempts)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(rateLimitWait):
		}
	}
	return "", lastErr
}

func (t *HTTPTranslator) generate(ctx context.Context, prompt string) (string, error) {
	var response generateResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("key", t.apiKey).
		SetBody(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}).
		SetResult(&response).
		SetError(&response).
		Post(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %v", err)
	}
	if resp.StatusCode() == 429 {
		return "", fmt.Errorf("rate limited: HTTP 429")
	}
	if response.Error != nil {
		return "", fmt.Errorf("translation API error %d: %s", response.Error.Code, response.Error.Message)
	}
	if resp.IsError() {
		return "", fmt.Errorf("translation request failed: HTTP %d", resp.StatusCode())
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("translation response was empty")
	}
	return strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text), nil
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit")
}
