// Package gemini is a client for the Google Generative Language API, used to
// analyze inspiration images.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const defaultModel = "gemini-2.0-flash-exp"

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ImageInput is an inline image payload. Exactly one of DataBase64 (with
// MimeType) or URL should be set; URLs are fetched and inlined before the
// analysis call.
type ImageInput struct {
	DataBase64 string
	MimeType   string
	URL        string
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		model:      model,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

// Analyze sends the image together with the instruction text and returns the
// model's text response.
func (c *Client) Analyze(ctx context.Context, promptText string, img ImageInput) (string, error) {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		return "", errors.New("prompt is empty")
	}

	if img.URL != "" && img.DataBase64 == "" {
		fetched, err := c.fetchImage(ctx, img.URL)
		if err != nil {
			return "", err
		}
		img = fetched
	}
	if img.DataBase64 == "" {
		return "", errors.New("image data is empty")
	}
	if img.MimeType == "" {
		img.MimeType = "image/jpeg"
	}

	req := generateContentRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{InlineData: &blob{Data: img.DataBase64, MimeType: img.MimeType}},
					{Text: promptText},
				},
			},
		},
	}

	return c.generateContent(ctx, req)
}

func (c *Client) fetchImage(ctx context.Context, url string) (ImageInput, error) {
	if c.httpClient == nil {
		return ImageInput{}, errors.New("http client is nil")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ImageInput{}, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ImageInput{}, fmt.Errorf("fetch image: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return ImageInput{}, fmt.Errorf("fetch image %s: %s", url, httpResp.Status)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return ImageInput{}, fmt.Errorf("read image: %w", err)
	}

	mimeType := strings.TrimSpace(httpResp.Header.Get("content-type"))
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(raw)
	}

	return ImageInput{
		DataBase64: base64.StdEncoding.EncodeToString(raw),
		MimeType:   mimeType,
	}, nil
}

func (c *Client) generateContent(ctx context.Context, payload generateContentRequest) (string, error) {
	if c.httpClient == nil {
		return "", errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := extractText(decoded)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: no text content in response")
	}
	return text, nil
}

func extractText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}
