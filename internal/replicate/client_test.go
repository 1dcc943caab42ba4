package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateCreateAndPoll(t *testing.T) {
	var polls int
	var gotAuth, gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/predictions"):
			gotAuth = r.Header.Get("authorization")

			var req struct {
				Input struct {
					Prompt       string `json:"prompt"`
					AspectRatio  string `json:"aspect_ratio"`
					OutputFormat string `json:"output_format"`
					NumOutputs   int    `json:"num_outputs"`
				} `json:"input"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode create request: %v", err)
			}
			gotPrompt = req.Input.Prompt
			if req.Input.AspectRatio != "1:1" || req.Input.OutputFormat != "webp" || req.Input.NumOutputs != 1 {
				t.Errorf("input = %+v", req.Input)
			}

			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "pred-1",
				"status": "processing",
			})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/predictions/pred-1"):
			polls++
			status := "processing"
			var output any
			if polls >= 2 {
				status = "succeeded"
				output = []any{"https://img.example/out.webp"}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "pred-1",
				"status": status,
				"output": output,
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(Options{
		APIToken:     "tok",
		BaseURL:      srv.URL,
		PollInterval: time.Millisecond,
		PollAttempts: 10,
		HTTPClient:   srv.Client(),
	})

	output, err := c.Generate(context.Background(), "a blue poster")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotPrompt != "a blue poster" {
		t.Errorf("prompt = %q", gotPrompt)
	}

	arr, ok := output.([]any)
	if !ok || len(arr) != 1 || arr[0] != "https://img.example/out.webp" {
		t.Errorf("output = %#v", output)
	}
}

func TestGeneratePredictionFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "pred-1",
			"status": "failed",
			"error":  "NSFW content detected",
		})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, PollInterval: time.Millisecond, PollAttempts: 3, HTTPClient: srv.Client()})

	_, err := c.Generate(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "NSFW content detected") {
		t.Errorf("got %v", err)
	}
}

func TestGeneratePollBudgetExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "pred-1",
			"status": "processing",
		})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, PollInterval: time.Millisecond, PollAttempts: 3, HTTPClient: srv.Client()})

	_, err := c.Generate(context.Background(), "x")
	if !errors.Is(err, ErrPollBudgetExceeded) {
		t.Errorf("got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "still processing") {
		t.Errorf("budget error must name the pending status: %v", err)
	}
}

func TestGenerateSucceedsOnLastPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "pred-1",
				"status": "starting",
			})
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "pred-1",
				"status": "succeeded",
				"output": []any{"https://img.example/last.webp"},
			})
		}
	}))
	defer srv.Close()

	// A single permitted poll that lands on "succeeded" must settle as
	// success, not a budget error.
	c := New(Options{BaseURL: srv.URL, PollInterval: time.Millisecond, PollAttempts: 1, HTTPClient: srv.Client()})

	output, err := c.Generate(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := output.([]any)
	if !ok || len(arr) != 1 || arr[0] != "https://img.example/last.webp" {
		t.Errorf("output = %#v", output)
	}
}

func TestGenerateContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "pred-1",
			"status": "processing",
		})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, PollInterval: time.Hour, PollAttempts: 5, HTTPClient: srv.Client()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "invalid token"}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})

	_, err := c.Generate(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("got %v", err)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	c := New(Options{HTTPClient: http.DefaultClient})
	if _, err := c.Generate(context.Background(), "  "); err == nil {
		t.Error("expected error for empty prompt")
	}
}
