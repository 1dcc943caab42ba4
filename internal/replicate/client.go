// Package replicate is a minimal client for the Replicate predictions API,
// used for image generation. Predictions are asynchronous: the client creates
// one and polls it on a fixed interval up to a bounded attempt count.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultModel = "black-forest-labs/flux-schnell"

const (
	defaultPollInterval = 2 * time.Second
	defaultPollAttempts = 60
)

// ErrPollBudgetExceeded reports a prediction that was still pending after the
// configured attempt budget.
var ErrPollBudgetExceeded = errors.New("replicate: prediction poll budget exceeded")

type Options struct {
	APIToken     string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	PollAttempts int
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

type Client struct {
	apiToken     string
	baseURL      string
	model        string
	pollInterval time.Duration
	pollAttempts int
	httpClient   *http.Client
	logger       *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	pollAttempts := opts.PollAttempts
	if pollAttempts <= 0 {
		pollAttempts = defaultPollAttempts
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiToken:     opts.APIToken,
		baseURL:      baseURL,
		model:        model,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
		httpClient:   opts.HTTPClient,
		logger:       logger,
	}
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

type createPredictionRequest struct {
	Input predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt       string `json:"prompt"`
	AspectRatio  string `json:"aspect_ratio"`
	OutputFormat string `json:"output_format"`
	NumOutputs   int    `json:"num_outputs"`
}

// Generate creates a prediction for the configured model and polls it to
// completion. The returned value is the prediction's decoded output, whose
// shape varies by model (bare URL string, array of URLs, or an object); the
// caller is responsible for extracting a single URL.
func (c *Client) Generate(ctx context.Context, promptText string) (any, error) {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		return nil, errors.New("prompt is empty")
	}

	pred, err := c.createPrediction(ctx, createPredictionRequest{
		Input: predictionInput{
			Prompt:       promptText,
			AspectRatio:  "1:1",
			OutputFormat: "webp",
			NumOutputs:   1,
		},
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("prediction created", "id", pred.ID, "status", pred.Status)

	pred, err = c.waitForPrediction(ctx, pred)
	if err != nil {
		return nil, err
	}

	var output any
	if len(pred.Output) > 0 {
		if err := json.Unmarshal(pred.Output, &output); err != nil {
			return nil, fmt.Errorf("decode prediction output: %w", err)
		}
	}
	return output, nil
}

func (c *Client) waitForPrediction(ctx context.Context, pred prediction) (prediction, error) {
	for attempt := 0; ; attempt++ {
		// Terminal statuses settle immediately, including on the last
		// permitted poll; only a still-pending prediction can exhaust the
		// budget.
		switch pred.Status {
		case "succeeded":
			return pred, nil
		case "failed", "canceled":
			detail := pred.Error
			if detail == "" {
				detail = pred.Status
			}
			return prediction{}, fmt.Errorf("replicate: prediction %s: %s", pred.ID, detail)
		}

		if attempt >= c.pollAttempts {
			return prediction{}, fmt.Errorf("%w: %s still %s after %d attempts", ErrPollBudgetExceeded, pred.ID, pred.Status, c.pollAttempts)
		}

		select {
		case <-ctx.Done():
			return prediction{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		refreshed, err := c.getPrediction(ctx, pred)
		if err != nil {
			return prediction{}, err
		}
		pred = refreshed
	}
}

func (c *Client) createPrediction(ctx context.Context, payload createPredictionRequest) (prediction, error) {
	url := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, c.model)
	return c.do(ctx, http.MethodPost, url, payload)
}

func (c *Client) getPrediction(ctx context.Context, pred prediction) (prediction, error) {
	url := pred.URLs.Get
	if url == "" {
		url = fmt.Sprintf("%s/v1/predictions/%s", c.baseURL, pred.ID)
	}
	return c.do(ctx, http.MethodGet, url, nil)
}

func (c *Client) do(ctx context.Context, method, url string, payload any) (prediction, error) {
	if c.httpClient == nil {
		return prediction{}, errors.New("http client is nil")
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return prediction{}, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return prediction{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+c.apiToken)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return prediction{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return prediction{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return prediction{}, fmt.Errorf("replicate API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var pred prediction
	if err := json.Unmarshal(rawBody, &pred); err != nil {
		return prediction{}, fmt.Errorf("decode response: %w", err)
	}
	return pred, nil
}
