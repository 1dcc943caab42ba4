// Package handlers routes Telegram updates into the wizard state machine and
// renders each step back as chat messages with inline keyboards.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"maya-studio/internal/gateway"
	"maya-studio/internal/mediagroup"
	"maya-studio/internal/telegram"
	"maya-studio/internal/workflow"
)

type Options struct {
	Telegram *telegram.Client
	Machine  *workflow.Machine
	Logger   *slog.Logger
}

type Handler struct {
	tg         *telegram.Client
	machine    *workflow.Machine
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:      opts.Telegram,
		machine: opts.Machine,
		logger:  logger,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func sessionKey(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}

	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, userID, msg)
	}

	if msg.Text != "" {
		return h.handleText(ctx, chatID, userID, msg.Text)
	}

	return nil
}

// HandleMediaGroup settles a photo album on its first image and treats it as
// one inspiration upload.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	key := sessionKey(group.ChatID, group.UserID)
	sess := h.machine.Session(key)
	if sess.Step != workflow.StepInspire {
		_ = h.tg.SendText(group.ChatID, "I can only use a photo as inspiration. Use /start to begin a new piece first.")
		return
	}

	if group.Extra > 0 {
		_ = h.tg.SendText(group.ChatID, fmt.Sprintf("I'll use the first photo as inspiration (%d more ignored).", group.Extra))
	}

	if err := h.processInspirationPhoto(ctx, group.ChatID, key, group.FileID); err != nil {
		h.logger.Error("media group inspiration failed", "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message) error {
	key := sessionKey(chatID, userID)

	switch msg.Command() {
	case "start":
		h.machine.Reset(key)
		return h.tg.SendText(chatID, welcomeText())
	case "help":
		return h.tg.SendText(chatID, helpText())
	case "back":
		sess, err := h.machine.Back(key)
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.renderStep(chatID, userID, sess)
	case "skip":
		sess, err := h.machine.SelectInspiration(ctx, key, workflow.InspirationSkip, "", gateway.InspirationImage{})
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.renderStep(chatID, userID, sess)
	case "startover", "reset":
		sess := h.machine.Reset(key)
		_ = h.tg.SendText(chatID, "Starting over!")
		return h.renderStep(chatID, userID, sess)
	default:
		return h.tg.SendText(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handler) handleText(ctx context.Context, chatID, userID int64, text string) error {
	key := sessionKey(chatID, userID)
	sess := h.machine.Session(key)

	switch sess.Step {
	case workflow.StepDescribe:
		updated, err := h.machine.HandleMessage(key, text)
		if err != nil {
			return h.sendActionError(chatID, err)
		}

		reply := lastAssistantMessage(updated)
		if reply == "" {
			return nil
		}
		if updated.ContentType != "" {
			_, err := h.tg.SendTextWithKeyboard(chatID, reply, confirmKeyboard(userID))
			return err
		}
		return h.tg.SendText(chatID, reply)

	case workflow.StepInspire:
		if looksLikeURL(text) {
			return h.selectInspirationLink(ctx, chatID, userID, key, strings.TrimSpace(text))
		}
		return h.renderStep(chatID, userID, sess)

	default:
		return h.renderStep(chatID, userID, sess)
	}
}

func (h *Handler) handlePhoto(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]
	fileID := photo.FileID

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       fileID,
		})
		return nil
	}

	key := sessionKey(chatID, userID)
	sess := h.machine.Session(key)
	if sess.Step != workflow.StepInspire {
		return h.tg.SendText(chatID, "I can only use a photo as inspiration. Use /start to begin a new piece first.")
	}

	return h.processInspirationPhoto(ctx, chatID, key, fileID)
}

func (h *Handler) processInspirationPhoto(ctx context.Context, chatID int64, key, fileID string) error {
	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, "Got it! Taking a look at your inspiration...")

	base64Data, mimeType, err := h.tg.DownloadFileBase64(ctx, fileID)
	if err != nil {
		h.logger.Error("inspiration photo download failed", "err", err)
		return h.tg.SendText(chatID, "I couldn't download that photo. Try sending it again, or /skip to continue without inspiration.")
	}

	sess, err := h.machine.SelectInspiration(ctx, key, workflow.InspirationUpload, fileID, gateway.InspirationImage{
		DataBase64: base64Data,
		MimeType:   mimeType,
	})
	if err != nil {
		return h.sendActionError(chatID, err)
	}

	if analysis := inspirationAnalysis(sess); analysis != "" {
		_ = h.tg.SendText(chatID, "Here's what I noticed:\n\n"+analysis)
	}

	userID := userIDFromKey(key)
	return h.renderStep(chatID, userID, sess)
}

func (h *Handler) selectInspirationLink(ctx context.Context, chatID, userID int64, key, link string) error {
	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, "Got it! Taking a look at your inspiration...")

	sess, err := h.machine.SelectInspiration(ctx, key, workflow.InspirationLink, link, gateway.InspirationImage{URL: link})
	if err != nil {
		return h.sendActionError(chatID, err)
	}

	if analysis := inspirationAnalysis(sess); analysis != "" {
		_ = h.tg.SendText(chatID, "Here's what I noticed:\n\n"+analysis)
	}

	return h.renderStep(chatID, userID, sess)
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, wizardCallbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		return h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID
	key := sessionKey(chatID, ownerID)

	switch action {
	case "confirm":
		_ = h.tg.AnswerCallback(q.ID, "Perfect!", false)
		sess, err := h.machine.ConfirmContentType(key)
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.renderStepEdit(chatID, messageID, ownerID, sess)

	case "reject":
		_ = h.tg.AnswerCallback(q.ID, "", false)
		sess, err := h.machine.RejectContentType(key)
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.tg.SendText(chatID, lastAssistantMessage(sess))

	case "insp":
		if len(args) < 1 {
			return nil
		}
		switch args[0] {
		case "upload":
			_ = h.tg.AnswerCallback(q.ID, "", false)
			return h.tg.SendText(chatID, "Send me the photo you'd like to use as inspiration.")
		case "link":
			_ = h.tg.AnswerCallback(q.ID, "", false)
			return h.tg.SendText(chatID, "Paste the link to the image you'd like to use as inspiration.")
		case "skip":
			_ = h.tg.AnswerCallback(q.ID, "No problem!", false)
			sess, err := h.machine.SelectInspiration(ctx, key, workflow.InspirationSkip, "", gateway.InspirationImage{})
			if err != nil {
				return h.sendActionError(chatID, err)
			}
			return h.renderStepEdit(chatID, messageID, ownerID, sess)
		}
		return nil

	case "aes":
		if len(args) < 1 {
			return nil
		}
		_ = h.tg.AnswerCallback(q.ID, "Creating your image...", false)
		h.tg.SendTyping(chatID)
		sess, err := h.machine.SelectAesthetic(ctx, key, args[0])
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.sendGenerated(chatID, ownerID, sess)

	case "revise":
		sess := h.machine.Session(key)
		if !h.machine.CanRevise(sess) {
			return h.tg.AnswerCallback(q.ID, "You've used all your revisions for this piece.", true)
		}
		_ = h.tg.AnswerCallback(q.ID, "", false)
		return h.editOrSend(chatID, messageID, "What would you like to adjust?", reviseKeyboard(ownerID))

	case "rev":
		if len(args) < 1 {
			return nil
		}
		_ = h.tg.AnswerCallback(q.ID, "Revising...", false)
		h.tg.SendTyping(chatID)
		sess, err := h.machine.RequestRevision(ctx, key, args[0])
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.sendGenerated(chatID, ownerID, sess)

	case "approve":
		_ = h.tg.AnswerCallback(q.ID, "Writing your captions...", false)
		h.tg.SendTyping(chatID)
		sess, err := h.machine.Approve(ctx, key)
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.tg.SendText(chatID, captionsText(sess))

	case "back":
		_ = h.tg.AnswerCallback(q.ID, "", false)
		sess, err := h.machine.Back(key)
		if err != nil {
			return h.sendActionError(chatID, err)
		}
		return h.renderStepEdit(chatID, messageID, ownerID, sess)

	case "reset":
		_ = h.tg.AnswerCallback(q.ID, "Starting over!", false)
		h.machine.Reset(key)
		return h.tg.SendText(chatID, welcomeText())

	default:
		return h.tg.AnswerCallback(q.ID, "OK", false)
	}
}

// sendGenerated posts the current image and the refine controls after a
// generation or revision settles.
func (h *Handler) sendGenerated(chatID, ownerID int64, sess workflow.Session) error {
	if sess.GeneratedImage == nil {
		_ = h.tg.SendText(chatID, "I couldn't create the image this time. You can try another aesthetic or start over.")
		return h.renderStep(chatID, ownerID, sess)
	}

	caption := "Here's your " + sess.GeneratedImage.ContentType + " image!"
	if sess.Error != "" {
		caption += "\n(Generated a placeholder while the image service recovers.)"
	}
	if err := h.tg.SendImage(chatID, sess.GeneratedImage.URL, caption); err != nil {
		h.logger.Error("send generated image failed", "err", err)
		_ = h.tg.SendText(chatID, "Image ready at: "+sess.GeneratedImage.URL)
	}

	return h.renderStep(chatID, ownerID, sess)
}

func (h *Handler) renderStep(chatID, ownerID int64, sess workflow.Session) error {
	text := stepText(sess, h.machine.MaxRevisions())
	kb, ok := stepKeyboard(ownerID, sess, h.machine.CanRevise(sess))
	if !ok {
		return h.tg.SendText(chatID, text)
	}
	_, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	return err
}

// renderStepEdit rewrites the keyboard message a callback came from so the
// wizard advances in place instead of stacking messages.
func (h *Handler) renderStepEdit(chatID int64, messageID int, ownerID int64, sess workflow.Session) error {
	text := stepText(sess, h.machine.MaxRevisions())
	kb, ok := stepKeyboard(ownerID, sess, h.machine.CanRevise(sess))
	if !ok {
		return h.tg.SendText(chatID, text)
	}
	return h.editOrSend(chatID, messageID, text, kb)
}

// editOrSend falls back to a fresh message when the edit is rejected, for
// example when the keyboard message is too old to edit.
func (h *Handler) editOrSend(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
		return nil
	}
	_, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	return err
}

func (h *Handler) sendActionError(chatID int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workflow.ErrBusy):
		return h.tg.SendText(chatID, "Hang on, I'm still working on the previous request.")
	case errors.Is(err, workflow.ErrRevisionLimit):
		return h.tg.SendText(chatID, "You've used all your revisions for this piece. You can approve the image or /startover.")
	case errors.Is(err, workflow.ErrInvalidTransition):
		return h.tg.SendText(chatID, "That action isn't available right now. Use /help if you're stuck.")
	default:
		h.logger.Error("wizard action failed", "err", err)
		return h.tg.SendText(chatID, "Something went wrong. Please try again.")
	}
}

func lastAssistantMessage(sess workflow.Session) string {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == workflow.RoleAssistant {
			return sess.Messages[i].Text
		}
	}
	return ""
}

func inspirationAnalysis(sess workflow.Session) string {
	if sess.Inspiration == nil {
		return ""
	}
	return sess.Inspiration.Analysis
}

func looksLikeURL(text string) bool {
	text = strings.TrimSpace(strings.ToLower(text))
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}

func userIDFromKey(key string) int64 {
	parts := strings.Split(key, ":")
	if len(parts) != 2 {
		return 0
	}
	id, _ := strconv.ParseInt(parts[1], 10, 64)
	return id
}
