package moderation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/imaging"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const defaultModel = "omni-moderation-latest"

// HTTPOracle asks an OpenAI-compatible moderation endpoint for a verdict.
type HTTPOracle struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	logger *logger.Logger
}

func NewHTTPOracle(url, apiKey, model string, timeout time.Duration, log *logger.Logger) *HTTPOracle {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPOracle{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: log.Named("ModerationOracle"),
	}
}

type moderationInput struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type moderationRequest struct {
	Model string            `json:"model"`
	Input []moderationInput `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged bool `json:"flagged"`
	} `json:"results"`
}

func (o *HTTPOracle) CheckText(ctx context.Context, text string) (bool, error) {
	return o.classify(ctx, moderationInput{Type: "text", Text: text})
}

// CheckImage sends the image inline as a data URL.
func (o *HTTPOracle) CheckImage(ctx context.Context, data []byte) (bool, error) {
	mime := http.DetectContentType(data)
	if info, err := imaging.Inspect(data); err == nil {
		mime = info.MIME
	}
	ref := &imageRef{URL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)}
	return o.classify(ctx, moderationInput{Type: "image_url", ImageURL: ref})
}

func (o *HTTPOracle) classify(ctx context.Context, in moderationInput) (bool, error) {
	payload, err := json.Marshal(moderationRequest{Model: o.model, Input: []moderationInput{in}})
	if err != nil {
		return false, fmt.Errorf("failed to marshal moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Error("Moderation request failed", zap.String("input_type", in.Type), zap.Error(err))
		return false, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		o.logger.Error("Moderation API returned an error",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", snippet))
		return false, fmt.Errorf("moderation API returned status %d", resp.StatusCode)
	}

	var out moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode moderation response: %w", err)
	}
	if len(out.Results) == 0 {
		return false, fmt.Errorf("moderation response has no results")
	}

	flagged := false
	for _, r := range out.Results {
		flagged = flagged || r.Flagged
	}
	o.logger.Debug("Moderation verdict", zap.String("input_type", in.Type), zap.Bool("flagged", flagged))
	return !flagged, nil
}
