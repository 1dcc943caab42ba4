package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"maya-studio/internal/brand"
	"maya-studio/internal/gateway"
)

const defaultMaxRevisions = 3

var (
	// ErrInvalidTransition reports an action that is not legal in the
	// session's current step.
	ErrInvalidTransition = errors.New("workflow: action not allowed in current step")
	// ErrBusy reports a generation-triggering action while another
	// generation call is still in flight.
	ErrBusy = errors.New("workflow: generation already in flight")
	// ErrRevisionLimit reports a revision request after the budget is spent.
	ErrRevisionLimit = errors.New("workflow: revision limit reached")
)

const (
	clarifyReply = "I'd love to help! Could you tell me more about what you're looking to create? For example: Is it for a job posting, educational content, or something else?"
	rejectReply  = "No problem! Tell me more about what you're working on and I'll help identify the right approach."
)

type Options struct {
	Gateway *gateway.Gateway
	// MaxRevisions bounds the total image count per session: the original
	// plus at most MaxRevisions-1 revisions.
	MaxRevisions int
	Logger       *slog.Logger
}

// Machine owns the session store and exposes one method per legal transition.
// Illegal (step, action) pairs are rejected, never silently applied.
type Machine struct {
	store        *Store
	gw           *gateway.Gateway
	maxRevisions int
	logger       *slog.Logger
}

func NewMachine(opts Options) *Machine {
	maxRevisions := opts.MaxRevisions
	if maxRevisions <= 0 {
		maxRevisions = defaultMaxRevisions
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Machine{
		store:        NewStore(),
		gw:           opts.Gateway,
		maxRevisions: maxRevisions,
		logger:       logger,
	}
}

// Session returns a snapshot of the session, creating it on first use.
func (m *Machine) Session(key string) Session {
	return m.store.Get(key)
}

// MaxRevisions returns the configured revision budget.
func (m *Machine) MaxRevisions() int {
	return m.maxRevisions
}

// CanRevise reports whether the session may still request a revision.
func (m *Machine) CanRevise(sess Session) bool {
	return sess.RevisionCount < m.maxRevisions-1
}

// HandleMessage appends a user message in the Describe step and, when no
// content type is set yet, runs keyword detection and appends the assistant's
// confirmation prompt or a clarifying follow-up.
func (m *Machine) HandleMessage(key, text string) (Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return m.store.Get(key), nil
	}

	var actionErr error
	sess := m.store.Update(key, func(s *Session) {
		if s.Step != StepDescribe {
			actionErr = ErrInvalidTransition
			return
		}

		s.Messages = append(s.Messages, ChatMessage{Role: RoleUser, Text: text, Timestamp: time.Now()})
		if s.ContentType != "" {
			return
		}

		if label, ok := brand.DetectContentType(text); ok {
			s.ContentType = label
			s.Messages = append(s.Messages, ChatMessage{
				Role:      RoleAssistant,
				Text:      "Sounds like a " + label + " piece - does that feel right?",
				Timestamp: time.Now(),
			})
		} else {
			s.Messages = append(s.Messages, ChatMessage{Role: RoleAssistant, Text: clarifyReply, Timestamp: time.Now()})
		}
	})
	return sess, actionErr
}

// ConfirmContentType accepts the detected content type and moves to Inspire.
func (m *Machine) ConfirmContentType(key string) (Session, error) {
	var actionErr error
	sess := m.store.Update(key, func(s *Session) {
		if s.Step != StepDescribe || s.ContentType == "" {
			actionErr = ErrInvalidTransition
			return
		}
		s.Step = StepInspire
	})
	return sess, actionErr
}

// RejectContentType clears the detected content type and asks the user to
// elaborate; the session stays in Describe.
func (m *Machine) RejectContentType(key string) (Session, error) {
	var actionErr error
	sess := m.store.Update(key, func(s *Session) {
		if s.Step != StepDescribe {
			actionErr = ErrInvalidTransition
			return
		}
		s.ContentType = ""
		s.Messages = append(s.Messages, ChatMessage{Role: RoleAssistant, Text: rejectReply, Timestamp: time.Now()})
	})
	return sess, actionErr
}

// SelectInspiration stores the inspiration choice and moves to Style. For
// uploads and links the image is analyzed through the gateway; analysis
// failure is non-fatal and the session proceeds without analysis text.
func (m *Machine) SelectInspiration(ctx context.Context, key string, source InspirationSource, reference string, img gateway.InspirationImage) (Session, error) {
	var actionErr error
	sess := m.store.Update(key, func(s *Session) {
		switch {
		case s.Step != StepInspire:
			actionErr = ErrInvalidTransition
		case s.Loading:
			actionErr = ErrBusy
		default:
			s.Inspiration = &Inspiration{Source: source, Reference: reference}
			s.Step = StepStyle
			if source != InspirationSkip {
				s.Loading = true
				s.Error = ""
			}
		}
	})
	if actionErr != nil || source == InspirationSkip {
		return sess, actionErr
	}

	epoch := m.store.Epoch(key)
	result, err := m.gw.AnalyzeInspiration(ctx, img)
	if err != nil {
		m.logger.Error("inspiration analysis rejected", "err", err)
	}

	sess, applied := m.store.UpdateIfEpoch(key, epoch, func(s *Session) {
		s.Loading = false
		if err != nil {
			s.Error = err.Error()
			return
		}
		if s.Inspiration != nil {
			s.Inspiration.Analysis = result.Analysis
		}
		s.Error = result.ErrorDetail
	})
	if !applied {
		m.logger.Info("discarding stale inspiration analysis", "session", key)
	}
	return sess, nil
}

// SelectAesthetic stores the aesthetic, enters Create, and runs image
// generation. The session always settles in Refine: with the generated or
// placeholder image, or without one if the generation call was rejected.
func (m *Machine) SelectAesthetic(ctx context.Context, key, aestheticID string) (Session, error) {
	aestheticID = strings.TrimSpace(aestheticID)
	if aestheticID == "" {
		return m.store.Get(key), ErrInvalidTransition
	}

	var actionErr error
	var req gateway.ImageRequest
	m.store.Update(key, func(s *Session) {
		switch {
		case s.Step != StepStyle:
			actionErr = ErrInvalidTransition
		case s.Loading:
			actionErr = ErrBusy
		default:
			s.Aesthetic = aestheticID
			s.Step = StepCreate
			s.Loading = true
			s.Error = ""
			req = gateway.ImageRequest{
				ContentType: s.ContentType,
				Aesthetic:   aestheticID,
				Inspiration: inspirationAnalysis(s),
			}
		}
	})
	if actionErr != nil {
		return m.store.Get(key), actionErr
	}

	return m.settleGeneration(ctx, key, req), nil
}

// RequestRevision regenerates the image with a revision instruction. Permitted
// only while fewer than MaxRevisions-1 revisions have been spent.
func (m *Machine) RequestRevision(ctx context.Context, key, aspect string) (Session, error) {
	aspect = strings.TrimSpace(aspect)
	if aspect == "" {
		return m.store.Get(key), ErrInvalidTransition
	}

	var actionErr error
	var req gateway.ImageRequest
	m.store.Update(key, func(s *Session) {
		switch {
		case s.Step != StepRefine:
			actionErr = ErrInvalidTransition
		case s.Loading:
			actionErr = ErrBusy
		case s.RevisionCount >= m.maxRevisions-1:
			actionErr = ErrRevisionLimit
		default:
			s.RevisionCount++
			s.Step = StepCreate
			s.Loading = true
			s.Error = ""
			req = gateway.ImageRequest{
				ContentType:    s.ContentType,
				Aesthetic:      s.Aesthetic,
				Inspiration:    inspirationAnalysis(s),
				Revision:       aspect,
				PreviousPrompt: previousPrompt(s),
			}
		}
	})
	if actionErr != nil {
		return m.store.Get(key), actionErr
	}

	return m.settleGeneration(ctx, key, req), nil
}

// Approve accepts the current image and moves to Copy with generated captions,
// or the static fallback set if the gateway call is rejected outright.
func (m *Machine) Approve(ctx context.Context, key string) (Session, error) {
	var actionErr error
	var req gateway.CaptionRequest
	m.store.Update(key, func(s *Session) {
		switch {
		case s.Step != StepRefine:
			actionErr = ErrInvalidTransition
		case s.Loading:
			actionErr = ErrBusy
		default:
			s.Loading = true
			s.Error = ""
			req = gateway.CaptionRequest{
				ContentType:      s.ContentType,
				Aesthetic:        s.Aesthetic,
				ImageDescription: previousPrompt(s),
			}
		}
	})
	if actionErr != nil {
		return m.store.Get(key), actionErr
	}
	if req.ContentType == "" {
		req.ContentType = "content"
	}

	epoch := m.store.Epoch(key)
	result, err := m.gw.GenerateCaptions(ctx, req)
	captions := result.Captions
	detail := result.ErrorDetail
	if err != nil {
		m.logger.Error("caption generation rejected", "err", err)
		captions = gateway.FallbackCaptions(req.ContentType)
		detail = err.Error()
	}

	sess, applied := m.store.UpdateIfEpoch(key, epoch, func(s *Session) {
		s.Captions = captions
		s.Step = StepCopy
		s.Loading = false
		s.Error = detail
	})
	if !applied {
		m.logger.Info("discarding stale caption result", "session", key)
	}
	return sess, nil
}

// Back moves one step backwards (Inspire to Describe, Style to Inspire,
// Refine to Style), leaving accumulated selections intact.
func (m *Machine) Back(key string) (Session, error) {
	var actionErr error
	sess := m.store.Update(key, func(s *Session) {
		if s.Loading {
			actionErr = ErrBusy
			return
		}
		switch s.Step {
		case StepInspire:
			s.Step = StepDescribe
		case StepStyle:
			s.Step = StepInspire
		case StepRefine:
			s.Step = StepStyle
		default:
			actionErr = ErrInvalidTransition
		}
	})
	return sess, actionErr
}

// Reset clears the entire session back to its initial state. A generation
// call still in flight settles as a no-op afterwards.
func (m *Machine) Reset(key string) Session {
	return m.store.Reset(key)
}

// settleGeneration runs the image generation call and folds the result into
// the session, which always lands in Refine. A session reset during the call
// makes the settlement a no-op.
func (m *Machine) settleGeneration(ctx context.Context, key string, req gateway.ImageRequest) Session {
	epoch := m.store.Epoch(key)

	if req.ContentType == "" {
		req.ContentType = "content"
	}

	result, err := m.gw.GenerateImage(ctx, req)
	if err != nil {
		m.logger.Error("image generation rejected", "err", err)
	}

	sess, applied := m.store.UpdateIfEpoch(key, epoch, func(s *Session) {
		s.Loading = false
		s.Step = StepRefine
		if err != nil {
			s.Error = err.Error()
			return
		}
		s.GeneratedImage = &GeneratedImage{
			URL:         result.URL,
			Prompt:      result.Prompt,
			Aesthetic:   req.Aesthetic,
			ContentType: req.ContentType,
			Timestamp:   time.Now(),
		}
		s.Error = result.ErrorDetail
	})
	if !applied {
		m.logger.Info("discarding stale generation result", "session", key)
	}
	return sess
}

func inspirationAnalysis(s *Session) string {
	if s.Inspiration == nil {
		return ""
	}
	return s.Inspiration.Analysis
}

func previousPrompt(s *Session) string {
	if s.GeneratedImage == nil {
		return ""
	}
	return s.GeneratedImage.Prompt
}
