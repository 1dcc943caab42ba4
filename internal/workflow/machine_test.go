package workflow

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"maya-studio/internal/gateway"
)

type imageFunc func(ctx context.Context, promptText string) (any, error)

func (f imageFunc) Generate(ctx context.Context, promptText string) (any, error) {
	return f(ctx, promptText)
}

type captionFunc func(ctx context.Context, promptText string) (string, error)

func (f captionFunc) Complete(ctx context.Context, promptText string) (string, error) {
	return f(ctx, promptText)
}

type visionFunc func(ctx context.Context, promptText string, img gateway.InspirationImage) (string, error)

func (f visionFunc) Analyze(ctx context.Context, promptText string, img gateway.InspirationImage) (string, error) {
	return f(ctx, promptText, img)
}

func newTestMachine(opts gateway.Options) *Machine {
	return NewMachine(Options{Gateway: gateway.New(opts)})
}

func TestHandleMessageDetection(t *testing.T) {
	m := newTestMachine(gateway.Options{})

	sess, err := m.HandleMessage("k", "I need a post about our nursing job openings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ContentType != "Job Opportunity Spotlight" {
		t.Errorf("ContentType = %q", sess.ContentType)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("got %d messages", len(sess.Messages))
	}
	if sess.Messages[0].Role != RoleUser || sess.Messages[1].Role != RoleAssistant {
		t.Error("message roles wrong")
	}
	if !strings.Contains(sess.Messages[1].Text, "Job Opportunity Spotlight") {
		t.Errorf("confirmation text = %q", sess.Messages[1].Text)
	}
}

func TestHandleMessageClarifies(t *testing.T) {
	m := newTestMachine(gateway.Options{})

	sess, err := m.HandleMessage("k", "hello!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ContentType != "" {
		t.Errorf("ContentType = %q", sess.ContentType)
	}
	if sess.Messages[len(sess.Messages)-1].Text != clarifyReply {
		t.Errorf("expected clarifying reply, got %q", sess.Messages[len(sess.Messages)-1].Text)
	}
}

func TestHandleMessageKeepsDetectedType(t *testing.T) {
	m := newTestMachine(gateway.Options{})

	if _, err := m.HandleMessage("k", "a job post please"); err != nil {
		t.Fatal(err)
	}
	sess, err := m.HandleMessage("k", "actually make it about a quiz")
	if err != nil {
		t.Fatal(err)
	}
	if sess.ContentType != "Job Opportunity Spotlight" {
		t.Errorf("detection must not rerun once a type is set, got %q", sess.ContentType)
	}
}

func TestConfirmAndRejectContentType(t *testing.T) {
	m := newTestMachine(gateway.Options{})

	if _, err := m.ConfirmContentType("k"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("confirm without detection: got %v", err)
	}

	if _, err := m.HandleMessage("k", "a job post please"); err != nil {
		t.Fatal(err)
	}

	sess, err := m.RejectContentType("k")
	if err != nil {
		t.Fatal(err)
	}
	if sess.ContentType != "" || sess.Step != StepDescribe {
		t.Errorf("reject: got %+v", sess)
	}
	if sess.Messages[len(sess.Messages)-1].Text != rejectReply {
		t.Errorf("reject reply = %q", sess.Messages[len(sess.Messages)-1].Text)
	}

	if _, err := m.HandleMessage("k", "hiring announcement"); err != nil {
		t.Fatal(err)
	}
	sess, err = m.ConfirmContentType("k")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepInspire {
		t.Errorf("Step = %q, want inspire", sess.Step)
	}
}

// TestDegradedEndToEnd walks the whole wizard with no providers configured:
// every step still completes with placeholder and fallback output.
func TestDegradedEndToEnd(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{})

	if _, err := m.HandleMessage("k", "I need a post about our nursing job openings"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ConfirmContentType("k"); err != nil {
		t.Fatal(err)
	}

	sess, err := m.SelectInspiration(ctx, "k", InspirationSkip, "", gateway.InspirationImage{})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepStyle {
		t.Fatalf("Step = %q, want style", sess.Step)
	}

	sess, err = m.SelectAesthetic(ctx, "k", "modern")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepRefine {
		t.Fatalf("Step = %q, want refine", sess.Step)
	}
	if sess.GeneratedImage == nil {
		t.Fatal("no generated image")
	}
	if !strings.HasPrefix(sess.GeneratedImage.URL, "https://placehold.co/") {
		t.Errorf("URL = %q", sess.GeneratedImage.URL)
	}
	if sess.Loading {
		t.Error("session still loading after settlement")
	}

	sess, err = m.Approve(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepCopy {
		t.Fatalf("Step = %q, want copy", sess.Step)
	}
	if len(sess.Captions) != 4 {
		t.Fatalf("got %d captions", len(sess.Captions))
	}
}

func TestInspirationAnalysisStored(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{
		Vision: visionFunc(func(ctx context.Context, promptText string, img gateway.InspirationImage) (string, error) {
			return "bold blues and clean grids", nil
		}),
	})

	if _, err := m.HandleMessage("k", "a job post"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ConfirmContentType("k"); err != nil {
		t.Fatal(err)
	}

	sess, err := m.SelectInspiration(ctx, "k", InspirationUpload, "file-1", gateway.InspirationImage{DataBase64: "aGk=", MimeType: "image/png"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepStyle {
		t.Fatalf("Step = %q", sess.Step)
	}
	if sess.Inspiration == nil || sess.Inspiration.Analysis != "bold blues and clean grids" {
		t.Errorf("Inspiration = %+v", sess.Inspiration)
	}
	if sess.Loading {
		t.Error("loading flag not cleared")
	}
}

func TestRevisionBudget(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{})
	key := "k"

	mustReachRefine(t, m, key)

	// Default budget is 3: the original image plus exactly 2 revisions.
	for i := 1; i <= 2; i++ {
		sess, err := m.RequestRevision(ctx, key, "colors")
		if err != nil {
			t.Fatalf("revision %d: %v", i, err)
		}
		if sess.RevisionCount != i {
			t.Fatalf("revision %d: RevisionCount = %d", i, sess.RevisionCount)
		}
		if sess.Step != StepRefine {
			t.Fatalf("revision %d: Step = %q", i, sess.Step)
		}
	}

	sess, err := m.RequestRevision(ctx, key, "layout")
	if !errors.Is(err, ErrRevisionLimit) {
		t.Fatalf("third revision: got %v", err)
	}
	if sess.RevisionCount != 2 {
		t.Errorf("rejected revision must not consume budget, RevisionCount = %d", sess.RevisionCount)
	}
	if sess.Step != StepRefine {
		t.Errorf("Step = %q", sess.Step)
	}
}

func TestCanRevise(t *testing.T) {
	m := newTestMachine(gateway.Options{})

	if !m.CanRevise(Session{RevisionCount: 0}) || !m.CanRevise(Session{RevisionCount: 1}) {
		t.Error("revisions 0 and 1 must be allowed")
	}
	if m.CanRevise(Session{RevisionCount: 2}) {
		t.Error("revision 2 must be blocked with the default budget")
	}
}

func TestRevisionUsesPreviousPrompt(t *testing.T) {
	ctx := context.Background()
	var prompts []string
	m := newTestMachine(gateway.Options{
		Image: imageFunc(func(ctx context.Context, promptText string) (any, error) {
			prompts = append(prompts, promptText)
			return "https://img.example/ok.webp", nil
		}),
	})

	mustReachRefine(t, m, "k")
	if _, err := m.RequestRevision(ctx, "k", "colors"); err != nil {
		t.Fatal(err)
	}

	if len(prompts) != 2 {
		t.Fatalf("got %d generation calls", len(prompts))
	}
	if !strings.Contains(prompts[1], "REVISION REQUEST: Adjust the colors") {
		t.Errorf("revision prompt missing revision request")
	}
	if !strings.Contains(prompts[1], prompts[0]) {
		t.Errorf("revision prompt must embed the previous prompt")
	}
}

func TestApproveFallsBackOnProviderFailure(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{
		Caption: captionFunc(func(ctx context.Context, promptText string) (string, error) {
			return "", errors.New("rate limited")
		}),
	})

	mustReachRefine(t, m, "k")

	sess, err := m.Approve(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepCopy || len(sess.Captions) != 4 {
		t.Errorf("got step %q with %d captions", sess.Step, len(sess.Captions))
	}
	if sess.Error != "rate limited" {
		t.Errorf("Error = %q", sess.Error)
	}
}

// Approve with no content type set still lands in Copy: the machine
// substitutes a generic label before calling the gateway.
func TestApproveWithoutContentType(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{})

	m.store.Update("k", func(s *Session) {
		s.Step = StepRefine
	})

	sess, err := m.Approve(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepCopy || len(sess.Captions) != 4 {
		t.Errorf("got step %q with %d captions", sess.Step, len(sess.Captions))
	}
}

func TestBusyGuard(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{})

	m.store.Update("k", func(s *Session) {
		s.Step = StepStyle
		s.ContentType = "Job Opportunity Spotlight"
		s.Loading = true
	})

	if _, err := m.SelectAesthetic(ctx, "k", "modern"); !errors.Is(err, ErrBusy) {
		t.Errorf("got %v", err)
	}
	if _, err := m.Back("k"); !errors.Is(err, ErrBusy) {
		t.Errorf("back while loading: got %v", err)
	}
}

func TestBackTransitions(t *testing.T) {
	m := newTestMachine(gateway.Options{})

	if _, err := m.Back("k"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("back from describe: got %v", err)
	}

	steps := []struct {
		from Step
		to   Step
	}{
		{StepInspire, StepDescribe},
		{StepStyle, StepInspire},
		{StepRefine, StepStyle},
	}
	for _, tt := range steps {
		m.store.Update("k", func(s *Session) { s.Step = tt.from })
		sess, err := m.Back("k")
		if err != nil {
			t.Fatalf("back from %q: %v", tt.from, err)
		}
		if sess.Step != tt.to {
			t.Errorf("back from %q = %q, want %q", tt.from, sess.Step, tt.to)
		}
	}

	m.store.Update("k", func(s *Session) { s.Step = StepCopy })
	if _, err := m.Back("k"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("back from copy: got %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{})

	if _, err := m.SelectAesthetic(ctx, "k", "modern"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("aesthetic in describe: got %v", err)
	}
	if _, err := m.RequestRevision(ctx, "k", "colors"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("revision in describe: got %v", err)
	}
	if _, err := m.Approve(ctx, "k"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approve in describe: got %v", err)
	}
	if _, err := m.SelectInspiration(ctx, "k", InspirationSkip, "", gateway.InspirationImage{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("inspiration in describe: got %v", err)
	}
	if _, err := m.HandleMessage("k", "hi"); err != nil {
		t.Fatal(err)
	}
	m.store.Update("k", func(s *Session) { s.Step = StepRefine })
	if _, err := m.HandleMessage("k", "more text"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("message in refine: got %v", err)
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine(gateway.Options{})

	mustReachRefine(t, m, "k")
	if _, err := m.Approve(ctx, "k"); err != nil {
		t.Fatal(err)
	}

	sess := m.Reset("k")
	if !reflect.DeepEqual(sess, defaultSession()) {
		t.Errorf("reset session = %+v", sess)
	}
}

// TestStaleGenerationDiscarded resets the session while a generation call is
// in flight; the settlement must not touch the fresh session.
func TestStaleGenerationDiscarded(t *testing.T) {
	ctx := context.Background()

	var m *Machine
	m = NewMachine(Options{Gateway: gateway.New(gateway.Options{
		Image: imageFunc(func(ctx context.Context, promptText string) (any, error) {
			m.Reset("k")
			return "https://img.example/stale.webp", nil
		}),
	})})

	mustReachStyle(t, m, "k")

	sess, err := m.SelectAesthetic(ctx, "k", "modern")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sess, defaultSession()) {
		t.Errorf("stale result applied: %+v", sess)
	}
	if got := m.Session("k"); got.GeneratedImage != nil || got.Step != StepDescribe {
		t.Errorf("session after stale settlement: %+v", got)
	}
}

func mustReachStyle(t *testing.T, m *Machine, key string) {
	t.Helper()
	if _, err := m.HandleMessage(key, "I need a post about our nursing job openings"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ConfirmContentType(key); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SelectInspiration(context.Background(), key, InspirationSkip, "", gateway.InspirationImage{}); err != nil {
		t.Fatal(err)
	}
}

func mustReachRefine(t *testing.T, m *Machine, key string) {
	t.Helper()
	mustReachStyle(t, m, key)
	sess, err := m.SelectAesthetic(context.Background(), key, "modern")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepRefine {
		t.Fatalf("Step = %q, want refine", sess.Step)
	}
}
