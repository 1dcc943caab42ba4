package api

import (
	"time"

	"maya-studio/internal/gateway"
	"maya-studio/internal/workflow"
)

// SessionView is the JSON shape of a wizard session.
type SessionView struct {
	ID             string               `json:"id"`
	Step           string               `json:"step"`
	Messages       []MessageView        `json:"messages"`
	ContentType    string               `json:"contentType,omitempty"`
	Aesthetic      string               `json:"aesthetic,omitempty"`
	Inspiration    *InspirationView     `json:"inspiration,omitempty"`
	GeneratedImage *GeneratedImageView  `json:"generatedImage,omitempty"`
	Captions       []gateway.Caption    `json:"captions,omitempty"`
	RevisionCount  int                  `json:"revisionCount"`
	Loading        bool                 `json:"loading"`
	Error          string               `json:"error,omitempty"`
}

type MessageView struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type InspirationView struct {
	Source    string `json:"source"`
	Reference string `json:"reference,omitempty"`
	Analysis  string `json:"analysis,omitempty"`
}

type GeneratedImageView struct {
	URL         string    `json:"url"`
	Prompt      string    `json:"prompt"`
	Aesthetic   string    `json:"aesthetic"`
	ContentType string    `json:"contentType"`
	Timestamp   time.Time `json:"timestamp"`
}

func sessionResponse(id string, sess workflow.Session) SessionView {
	view := SessionView{
		ID:            id,
		Step:          string(sess.Step),
		Messages:      make([]MessageView, 0, len(sess.Messages)),
		ContentType:   sess.ContentType,
		Aesthetic:     sess.Aesthetic,
		Captions:      sess.Captions,
		RevisionCount: sess.RevisionCount,
		Loading:       sess.Loading,
		Error:         sess.Error,
	}

	for _, m := range sess.Messages {
		view.Messages = append(view.Messages, MessageView{
			Role:      string(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
	}

	if sess.Inspiration != nil {
		view.Inspiration = &InspirationView{
			Source:    string(sess.Inspiration.Source),
			Reference: sess.Inspiration.Reference,
			Analysis:  sess.Inspiration.Analysis,
		}
	}

	if sess.GeneratedImage != nil {
		view.GeneratedImage = &GeneratedImageView{
			URL:         sess.GeneratedImage.URL,
			Prompt:      sess.GeneratedImage.Prompt,
			Aesthetic:   sess.GeneratedImage.Aesthetic,
			ContentType: sess.GeneratedImage.ContentType,
			Timestamp:   sess.GeneratedImage.Timestamp,
		}
	}

	return view
}
