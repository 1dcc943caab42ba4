// Package workflow holds the wizard's session state and the state machine that
// owns every legal transition between steps.
package workflow

import (
	"time"

	"maya-studio/internal/gateway"
)

// Step is a wizard step. Sessions start at StepDescribe and only move via an
// explicit transition.
type Step string

const (
	StepDescribe Step = "describe"
	StepInspire  Step = "inspire"
	StepStyle    Step = "style"
	StepCreate   Step = "create"
	StepRefine   Step = "refine"
	StepCopy     Step = "copy"
)

// Steps returns the wizard steps in order, for progress displays.
func Steps() []Step {
	return []Step{StepDescribe, StepInspire, StepStyle, StepCreate, StepRefine, StepCopy}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

type InspirationSource string

const (
	InspirationUpload InspirationSource = "upload"
	InspirationLink   InspirationSource = "link"
	InspirationSkip   InspirationSource = "skip"
)

// Inspiration records the user's inspiration choice. Reference is a provider
// file ID or remote URL; uploaded image bytes are transient and not kept past
// the analysis call.
type Inspiration struct {
	Source    InspirationSource
	Reference string
	Analysis  string
}

// GeneratedImage is the latest generation result. It is overwritten wholesale
// on every successful generation or revision.
type GeneratedImage struct {
	URL         string
	Prompt      string
	Aesthetic   string
	ContentType string
	Timestamp   time.Time
}

// Session is one user's run through the wizard. It is owned by the Store and
// mutated only through Machine actions.
type Session struct {
	Step           Step
	Messages       []ChatMessage
	ContentType    string
	Aesthetic      string
	Inspiration    *Inspiration
	GeneratedImage *GeneratedImage
	Captions       []gateway.Caption
	RevisionCount  int
	Loading        bool
	Error          string
}

func defaultSession() Session {
	return Session{Step: StepDescribe}
}
