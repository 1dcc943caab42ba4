package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"maya-studio/internal/gateway"
)

// GenerateImage runs one image generation outside of any session.
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentType    string `json:"contentType"`
		Aesthetic      string `json:"aesthetic"`
		Inspiration    string `json:"inspiration"`
		Revision       string `json:"revision"`
		PreviousPrompt string `json:"previousPrompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.gw.GenerateImage(r.Context(), gateway.ImageRequest{
		ContentType:    req.ContentType,
		Aesthetic:      req.Aesthetic,
		Inspiration:    req.Inspiration,
		Revision:       req.Revision,
		PreviousPrompt: req.PreviousPrompt,
	})
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"imageUrl":    result.URL,
		"prompt":      result.Prompt,
		"placeholder": result.Placeholder,
		"error":       result.ErrorDetail,
	})
}

// GenerateCaptions produces the four-tone caption set outside of any session.
func (h *Handler) GenerateCaptions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentType      string `json:"contentType"`
		Aesthetic        string `json:"aesthetic"`
		ImageDescription string `json:"imageDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.gw.GenerateCaptions(r.Context(), gateway.CaptionRequest{
		ContentType:      req.ContentType,
		Aesthetic:        req.Aesthetic,
		ImageDescription: req.ImageDescription,
	})
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"captions": result.Captions,
		"fallback": result.Fallback,
		"error":    result.ErrorDetail,
	})
}

// AnalyzeInspiration describes an inspiration image outside of any session.
func (h *Handler) AnalyzeInspiration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"imageBase64"`
		MimeType    string `json:"mimeType"`
		ImageURL    string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.gw.AnalyzeInspiration(r.Context(), gateway.InspirationImage{
		DataBase64: req.ImageBase64,
		MimeType:   req.MimeType,
		URL:        req.ImageURL,
	})
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"analysis": result.Analysis,
		"degraded": result.Degraded,
		"error":    result.ErrorDetail,
	})
}

func (h *Handler) respondGatewayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrMissingContentType),
		errors.Is(err, gateway.ErrMissingAesthetic),
		errors.Is(err, gateway.ErrMissingImage):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("generation request failed", "err", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
