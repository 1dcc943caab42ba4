package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnalyzeInlineImage(t *testing.T) {
	var gotKey, gotPath string
	var gotReq generateContentRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path

		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"parts": []map[string]any{
							{"text": "1. Bold blues"},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := New(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})

	got, err := c.Analyze(context.Background(), "describe this", ImageInput{DataBase64: "aGk=", MimeType: "image/png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1. Bold blues" {
		t.Errorf("got %q", got)
	}
	if gotKey != "key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash-exp:generateContent" {
		t.Errorf("path = %q", gotPath)
	}

	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 2 {
		t.Fatalf("contents = %+v", gotReq.Contents)
	}
	inline := gotReq.Contents[0].Parts[0].InlineData
	if inline == nil || inline.Data != "aGk=" || inline.MimeType != "image/png" {
		t.Errorf("inline data = %+v", inline)
	}
	if gotReq.Contents[0].Parts[1].Text != "describe this" {
		t.Errorf("text part = %q", gotReq.Contents[0].Parts[1].Text)
	}
}

func TestAnalyzeFetchesURL(t *testing.T) {
	imageBytes := []byte("fake image bytes")

	var analyzed *blob
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/image"):
			w.Header().Set("content-type", "image/jpeg")
			_, _ = w.Write(imageBytes)
		case strings.Contains(r.URL.Path, ":generateContent"):
			var req generateContentRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.Contents) == 1 && len(req.Contents[0].Parts) > 0 {
				analyzed = req.Contents[0].Parts[0].InlineData
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{{"text": "ok"}}}},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})

	got, err := c.Analyze(context.Background(), "describe", ImageInput{URL: srv.URL + "/image.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q", got)
	}

	if analyzed == nil {
		t.Fatal("no inline data sent")
	}
	if analyzed.MimeType != "image/jpeg" {
		t.Errorf("mime = %q", analyzed.MimeType)
	}
	if analyzed.Data != base64.StdEncoding.EncodeToString(imageBytes) {
		t.Errorf("data = %q", analyzed.Data)
	}
}

func TestAnalyzeFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})

	if _, err := c.Analyze(context.Background(), "describe", ImageInput{URL: srv.URL + "/missing.jpg"}); err == nil {
		t.Error("expected fetch error")
	}
}

func TestAnalyzeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad image"}}`))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})

	_, err := c.Analyze(context.Background(), "describe", ImageInput{DataBase64: "aGk=", MimeType: "image/png"})
	if err == nil || !strings.Contains(err.Error(), "bad image") {
		t.Errorf("got %v", err)
	}
}

func TestAnalyzeMissingImage(t *testing.T) {
	c := New(Options{HTTPClient: http.DefaultClient})
	if _, err := c.Analyze(context.Background(), "describe", ImageInput{}); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestAnalyzeDefaultsMimeType(t *testing.T) {
	var gotMime string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if inline := req.Contents[0].Parts[0].InlineData; inline != nil {
			gotMime = inline.MimeType
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "ok"}}}},
			},
		})
	}))
	defer srv.Close()

	c := New(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})

	if _, err := c.Analyze(context.Background(), "describe", ImageInput{DataBase64: "aGk="}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMime != "image/jpeg" {
		t.Errorf("mime = %q", gotMime)
	}
}
