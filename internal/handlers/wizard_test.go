package handlers

import (
	"strings"
	"testing"

	"maya-studio/internal/brand"
	"maya-studio/internal/gateway"
	"maya-studio/internal/workflow"
)

func TestStepTextProgress(t *testing.T) {
	got := stepText(workflow.Session{Step: workflow.StepStyle, ContentType: "Weekly Hot Jobs"}, 3)

	if !strings.Contains(got, "[Style]") {
		t.Errorf("current step not highlighted: %q", got)
	}
	if !strings.Contains(got, "Weekly Hot Jobs") {
		t.Errorf("content type missing: %q", got)
	}
}

func TestStepTextRevisionsLeft(t *testing.T) {
	got := stepText(workflow.Session{Step: workflow.StepRefine, RevisionCount: 1}, 3)
	if !strings.Contains(got, "Revisions left: 1") {
		t.Errorf("got %q", got)
	}

	got = stepText(workflow.Session{Step: workflow.StepRefine, RevisionCount: 2}, 3)
	if !strings.Contains(got, "Revisions left: 0") {
		t.Errorf("got %q", got)
	}
}

func TestStepKeyboard(t *testing.T) {
	if _, ok := stepKeyboard(1, workflow.Session{Step: workflow.StepDescribe}, true); ok {
		t.Error("describe without detection must have no keyboard")
	}

	kb, ok := stepKeyboard(1, workflow.Session{Step: workflow.StepDescribe, ContentType: "Weekly Hot Jobs"}, true)
	if !ok || len(kb.InlineKeyboard) == 0 {
		t.Error("describe with detection must offer confirm buttons")
	}

	kb, ok = stepKeyboard(1, workflow.Session{Step: workflow.StepStyle}, true)
	if !ok {
		t.Fatal("style step must have a keyboard")
	}
	var buttons int
	for _, row := range kb.InlineKeyboard {
		buttons += len(row)
	}
	// One button per aesthetic plus Back.
	if buttons != len(brand.Aesthetics())+1 {
		t.Errorf("got %d buttons", buttons)
	}
}

func TestRefineKeyboardHidesReviseWhenSpent(t *testing.T) {
	kb := refineKeyboard(1, false)
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if strings.Contains(btn.Text, "Revise") {
				t.Error("revise button shown after budget is spent")
			}
		}
	}
}

func TestCaptionsText(t *testing.T) {
	sess := workflow.Session{
		Step:     workflow.StepCopy,
		Captions: gateway.FallbackCaptions("Weekly Hot Jobs"),
	}

	got := captionsText(sess)
	for _, want := range []string{"Professional", "Conversational", "Urgent", "Playful", "#HiringNow"} {
		if !strings.Contains(got, want) {
			t.Errorf("captions text missing %q", want)
		}
	}
}

func TestCallbackData(t *testing.T) {
	if got := cb(42, "aes", "modern"); got != "mw:42:aes:modern" {
		t.Errorf("got %q", got)
	}
}

func TestLooksLikeURL(t *testing.T) {
	if !looksLikeURL(" https://example.com/a.png ") {
		t.Error("https URL not recognized")
	}
	if looksLikeURL("just words") {
		t.Error("plain text recognized as URL")
	}
}
