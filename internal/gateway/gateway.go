// Package gateway normalizes calls to the external generative providers into a
// uniform contract: every operation returns a usable result, substituting a
// deterministic placeholder or fallback when a provider is unconfigured or
// fails. Only invalid caller input is surfaced as a hard error.
package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"maya-studio/internal/prompt"
)

// Client-input errors, the only class that reaches callers as a failure.
var (
	ErrMissingContentType = errors.New("gateway: content type is required")
	ErrMissingAesthetic   = errors.New("gateway: aesthetic is required")
	ErrMissingImage       = errors.New("gateway: image data or url is required")
)

// ImageModel generates an image from a prompt. The returned output shape
// varies by provider (bare URL string, array, or object) and is normalized by
// the gateway.
type ImageModel interface {
	Generate(ctx context.Context, promptText string) (any, error)
}

// CaptionModel produces a text completion expected to contain caption JSON.
type CaptionModel interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// InspirationImage is an image to analyze, inline or by reference.
type InspirationImage struct {
	DataBase64 string
	MimeType   string
	URL        string
}

// VisionModel answers an instruction about an image.
type VisionModel interface {
	Analyze(ctx context.Context, promptText string, img InspirationImage) (string, error)
}

// Options configures a Gateway. A nil model marks that capability as
// unconfigured; its operations return placeholder output without any network
// call.
type Options struct {
	Image   ImageModel
	Caption CaptionModel
	Vision  VisionModel
	Logger  *slog.Logger
}

type Gateway struct {
	image   ImageModel
	caption CaptionModel
	vision  VisionModel
	logger  *slog.Logger
}

func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Gateway{
		image:   opts.Image,
		caption: opts.Caption,
		vision:  opts.Vision,
		logger:  logger,
	}
}

type ImageRequest struct {
	ContentType    string
	Aesthetic      string
	Inspiration    string
	Revision       string
	PreviousPrompt string
}

// ImageResult always carries a usable URL. Placeholder marks degraded output;
// ErrorDetail carries the provider failure for diagnostics.
type ImageResult struct {
	URL         string
	Prompt      string
	Placeholder bool
	ErrorDetail string
}

func (g *Gateway) GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error) {
	if req.ContentType == "" {
		return ImageResult{}, ErrMissingContentType
	}
	if req.Aesthetic == "" {
		return ImageResult{}, ErrMissingAesthetic
	}

	promptText := prompt.BuildImagePrompt(prompt.ImageParams{
		ContentType:    req.ContentType,
		Aesthetic:      req.Aesthetic,
		Inspiration:    req.Inspiration,
		Revision:       req.Revision,
		PreviousPrompt: req.PreviousPrompt,
	})

	if g.image == nil {
		g.logger.Info("image provider not configured, returning placeholder", "content_type", req.ContentType)
		return ImageResult{
			URL:         PlaceholderImageURL(req.ContentType),
			Prompt:      promptText,
			Placeholder: true,
		}, nil
	}

	output, err := g.image.Generate(ctx, promptText)
	if err != nil {
		g.logger.Error("image generation failed", "err", err)
		return ImageResult{
			URL:         PlaceholderImageURL(req.ContentType),
			Prompt:      promptText,
			Placeholder: true,
			ErrorDetail: err.Error(),
		}, nil
	}

	imageURL, ok := extractImageURL(output)
	if !ok {
		g.logger.Error("image generation returned no usable url", "output", output)
		return ImageResult{
			URL:         PlaceholderImageURL(req.ContentType),
			Prompt:      promptText,
			Placeholder: true,
			ErrorDetail: "no image URL in provider output",
		}, nil
	}

	return ImageResult{URL: imageURL, Prompt: promptText}, nil
}

type CaptionRequest struct {
	ContentType      string
	Aesthetic        string
	ImageDescription string
}

// CaptionResult always carries exactly one caption per tone, generated or
// fallback.
type CaptionResult struct {
	Captions    []Caption
	Fallback    bool
	ErrorDetail string
}

func (g *Gateway) GenerateCaptions(ctx context.Context, req CaptionRequest) (CaptionResult, error) {
	if req.ContentType == "" {
		return CaptionResult{}, ErrMissingContentType
	}
	aesthetic := req.Aesthetic
	if aesthetic == "" {
		aesthetic = "modern"
	}

	promptText := prompt.BuildCaptionPrompt(prompt.CaptionParams{
		ContentType:      req.ContentType,
		Aesthetic:        aesthetic,
		ImageDescription: req.ImageDescription,
	})

	if g.caption == nil {
		g.logger.Info("caption provider not configured, returning fallback", "content_type", req.ContentType)
		return CaptionResult{Captions: FallbackCaptions(req.ContentType), Fallback: true}, nil
	}

	completion, err := g.caption.Complete(ctx, promptText)
	if err != nil {
		g.logger.Error("caption generation failed", "err", err)
		return CaptionResult{
			Captions:    FallbackCaptions(req.ContentType),
			Fallback:    true,
			ErrorDetail: err.Error(),
		}, nil
	}

	captions, err := parseCaptions(completion)
	if err != nil {
		g.logger.Error("caption response did not match schema", "err", err)
		return CaptionResult{
			Captions:    FallbackCaptions(req.ContentType),
			Fallback:    true,
			ErrorDetail: err.Error(),
		}, nil
	}

	return CaptionResult{Captions: captions}, nil
}

// AnalysisResult carries the analysis text or a degraded notice.
type AnalysisResult struct {
	Analysis    string
	Degraded    bool
	ErrorDetail string
}

func (g *Gateway) AnalyzeInspiration(ctx context.Context, img InspirationImage) (AnalysisResult, error) {
	if img.DataBase64 == "" && img.URL == "" {
		return AnalysisResult{}, ErrMissingImage
	}

	if g.vision == nil {
		return AnalysisResult{
			Analysis: "API key not configured. The inspiration will be noted but not analyzed.",
			Degraded: true,
		}, nil
	}

	analysis, err := g.vision.Analyze(ctx, prompt.BuildInspirationAnalysisPrompt(), img)
	if err != nil {
		g.logger.Error("inspiration analysis failed", "err", err)
		return AnalysisResult{
			Analysis:    "Could not analyze the inspiration image.",
			Degraded:    true,
			ErrorDetail: err.Error(),
		}, nil
	}

	return AnalysisResult{Analysis: analysis}, nil
}
