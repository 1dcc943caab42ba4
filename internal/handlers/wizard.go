package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"maya-studio/internal/brand"
	"maya-studio/internal/workflow"
)

const wizardCallbackPrefix = "mw"

// reviseAspects are the adjustment directions offered on the refine step.
var reviseAspects = []struct {
	Key   string
	Label string
}{
	{"colors", "🎨 Colors"},
	{"layout", "📐 Layout"},
	{"style", "✨ Style"},
	{"mood", "🌤 Mood"},
}

func welcomeText() string {
	return "Hi! I'm Maya, your creative partner at Connected. 👋\n\n" +
		"I help you create on-brand social media content: images plus ready-to-post captions.\n\n" +
		"Tell me what you'd like to create! For example: \"I need a post about our nursing job openings\"."
}

func helpText() string {
	return "Here's how it works:\n\n" +
		"1. Describe - tell me what content you need\n" +
		"2. Inspire - share an inspiration image, a link, or skip\n" +
		"3. Style - pick an aesthetic\n" +
		"4. Create - I generate your image\n" +
		"5. Refine - revise or approve it\n" +
		"6. Copy - get captions in four tones\n\n" +
		"Commands:\n" +
		"/start - begin a new piece\n" +
		"/back - go one step back\n" +
		"/skip - skip the inspiration step\n" +
		"/startover - reset everything\n" +
		"/help - this message"
}

// stepText renders the session's current step as a progress line plus the
// step's instruction.
func stepText(sess workflow.Session, maxRevisions int) string {
	var b strings.Builder
	b.WriteString(progressLine(sess.Step))
	b.WriteString("\n\n")

	switch sess.Step {
	case workflow.StepDescribe:
		if sess.ContentType != "" {
			b.WriteString("Sounds like a " + sess.ContentType + " piece - does that feel right?")
		} else {
			b.WriteString("Tell me what you'd like to create!")
		}
	case workflow.StepInspire:
		b.WriteString("Creating: " + sess.ContentType + "\n\n")
		b.WriteString("Do you have an inspiration image? You can upload a photo, paste a link, or skip this step.")
	case workflow.StepStyle:
		b.WriteString("Creating: " + sess.ContentType + "\n")
		if sess.Inspiration != nil && sess.Inspiration.Source != workflow.InspirationSkip {
			b.WriteString("Inspiration: noted ✅\n")
		}
		b.WriteString("\nPick an aesthetic for your image:")
	case workflow.StepCreate:
		b.WriteString("Creating your image, one moment...")
	case workflow.StepRefine:
		revisionsLeft := maxRevisions - 1 - sess.RevisionCount
		if revisionsLeft < 0 {
			revisionsLeft = 0
		}
		b.WriteString("How does it look? You can revise it or approve it.\n")
		b.WriteString(fmt.Sprintf("Revisions left: %d", revisionsLeft))
	case workflow.StepCopy:
		b.WriteString("Your captions are ready! Use /start to create another piece.")
	}

	return b.String()
}

func progressLine(current workflow.Step) string {
	labels := map[workflow.Step]string{
		workflow.StepDescribe: "Describe",
		workflow.StepInspire:  "Inspire",
		workflow.StepStyle:    "Style",
		workflow.StepCreate:   "Create",
		workflow.StepRefine:   "Refine",
		workflow.StepCopy:     "Copy",
	}

	var parts []string
	for _, s := range workflow.Steps() {
		label := labels[s]
		if s == current {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " → ")
}

// stepKeyboard returns the keyboard for the session's step; ok is false when
// the step has no interactive controls.
func stepKeyboard(ownerID int64, sess workflow.Session, canRevise bool) (tgbotapi.InlineKeyboardMarkup, bool) {
	switch sess.Step {
	case workflow.StepDescribe:
		if sess.ContentType != "" {
			return confirmKeyboard(ownerID), true
		}
		return tgbotapi.InlineKeyboardMarkup{}, false
	case workflow.StepInspire:
		return inspirationKeyboard(ownerID), true
	case workflow.StepStyle:
		return aestheticKeyboard(ownerID), true
	case workflow.StepRefine:
		return refineKeyboard(ownerID, canRevise), true
	default:
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
}

func confirmKeyboard(ownerID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, that's right", cb(ownerID, "confirm")),
			tgbotapi.NewInlineKeyboardButtonData("❌ Not quite", cb(ownerID, "reject")),
		},
	)
}

func inspirationKeyboard(ownerID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📷 Upload photo", cb(ownerID, "insp", "upload")),
			tgbotapi.NewInlineKeyboardButtonData("🔗 Paste link", cb(ownerID, "insp", "link")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", cb(ownerID, "insp", "skip")),
			tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "back")),
		},
	)
}

func aestheticKeyboard(ownerID int64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, a := range brand.Aesthetics() {
		label := a.Icon + " " + a.Label
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "aes", a.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "back")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func refineKeyboard(ownerID int64, canRevise bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	first := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✅ Love it", cb(ownerID, "approve")),
	}
	if canRevise {
		first = append(first, tgbotapi.NewInlineKeyboardButtonData("🔄 Revise", cb(ownerID, "revise")))
	}
	rows = append(rows, first)

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "back")),
		tgbotapi.NewInlineKeyboardButtonData("🔁 Start over", cb(ownerID, "reset")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reviseKeyboard(ownerID int64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, a := range reviseAspects {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, cb(ownerID, "rev", a.Key)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func captionsText(sess workflow.Session) string {
	var b strings.Builder
	b.WriteString("Here are your captions! ✍️\n")

	for _, c := range sess.Captions {
		b.WriteString("\n— " + strings.ToUpper(c.Tone[:1]) + c.Tone[1:] + " —\n")
		b.WriteString(c.Text + "\n")
		if c.Hashtags != "" {
			b.WriteString(c.Hashtags + "\n")
		}
		if c.Platform != "" {
			b.WriteString("Best for: " + c.Platform + "\n")
		}
	}

	b.WriteString("\nUse /start to create another piece!")
	return b.String()
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", wizardCallbackPrefix, ownerID, strings.Join(parts, ":"))
}
