package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/conversation"
	"github.com/xaenox/offline-assistant/internal/models"
	"github.com/xaenox/offline-assistant/internal/storage"
)

const DefaultSessionTTL = 30 * time.Minute

// SessionFactory builds the session for one chat. ownerID scopes the chat's
// reminders and notes.
type SessionFactory func(ownerID string) *conversation.Session

// Message is one outgoing reply.
type Message struct {
	Text     string
	Markdown bool
}

// Handler answers chat messages without touching the Telegram API. Each
// chat gets its own Session, dropped after SessionTTL of inactivity.
type Handler struct {
	store     storage.Gateway
	sessions  *cache.Cache
	factory   SessionFactory
	logger    *zap.Logger
	listLimit int
}

func NewHandler(store storage.Gateway, factory SessionFactory, ttl time.Duration, listLimit int, logger *zap.Logger) *Handler {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if listLimit <= 0 {
		listLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:     store,
		sessions:  cache.New(ttl, 2*ttl),
		factory:   factory,
		logger:    logger,
		listLimit: listLimit,
	}
}

func ownerID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// session returns the chat's session, creating it on first use. Every hit
// refreshes the idle timer.
func (h *Handler) session(chatID int64) *conversation.Session {
	key := ownerID(chatID)
	if v, ok := h.sessions.Get(key); ok {
		s := v.(*conversation.Session)
		h.sessions.SetDefault(key, s)
		return s
	}

	s := h.factory(key)
	if err := h.sessions.Add(key, s, cache.DefaultExpiration); err != nil {
		// Another message for this chat won the race.
		if v, ok := h.sessions.Get(key); ok {
			return v.(*conversation.Session)
		}
		h.sessions.SetDefault(key, s)
	}
	h.logger.Info("Session started", zap.Int64("chat_id", chatID))
	return s
}

// ActiveSessions reports how many chats currently hold a session.
func (h *Handler) ActiveSessions() int {
	return h.sessions.ItemCount()
}

func (h *Handler) HandleText(ctx context.Context, chatID int64, text string) (Message, error) {
	reply, err := h.session(chatID).Handle(ctx, text)
	if err != nil {
		return Message{}, err
	}
	return Message{Text: reply.Text}, nil
}

func (h *Handler) HandleCommand(ctx context.Context, chatID int64, command string) Message {
	switch command {
	case "start":
		return Message{Text: welcomeText}
	case "help":
		return Message{Text: helpText}
	case "reminders":
		return h.handleReminders(ctx, chatID)
	case "notes":
		return h.handleNotes(ctx, chatID)
	case "reset":
		h.session(chatID).Reset()
		return Message{Text: "Done. I've forgotten our conversation."}
	case "facts":
		return h.handleFacts(chatID)
	default:
		return Message{Text: "Unknown command. Use /help to see available commands."}
	}
}

const welcomeText = `Welcome! 👋
I'm an offline assistant. I can chat in English or Farsi, do quick math, and keep reminders and notes for you.

Use /help to see all available commands.`

const helpText = `Available commands:
/start - Start the bot
/help - Show this help message
/reminders - Show your latest reminders
/notes - Show your latest notes
/facts - Show what I remember about you
/reset - Forget our conversation

Or just talk to me:
- remind me to call mom in 10 minutes
- take a note buy milk
- what's 12 times 4`

func (h *Handler) handleReminders(ctx context.Context, chatID int64) Message {
	reminders, err := h.store.ListReminders(ctx, ownerID(chatID), h.listLimit)
	if err != nil {
		h.logger.Error("Failed to list reminders", zap.Error(err), zap.Int64("chat_id", chatID))
		return Message{Text: "⚠️ Sorry, failed to retrieve your reminders. Please try again later."}
	}
	if len(reminders) == 0 {
		return Message{Text: "You don't have any reminders yet."}
	}

	response := "*Your reminders:*\n"
	for _, r := range reminders {
		response += fmt.Sprintf("• %s _%s_\n",
			escapeMarkdown(r.Content),
			escapeMarkdown(r.TriggerAt.Format("Jan 2 15:04")))
	}
	return Message{Text: response, Markdown: true}
}

func (h *Handler) handleNotes(ctx context.Context, chatID int64) Message {
	notes, err := h.store.ListNotes(ctx, ownerID(chatID), h.listLimit)
	if err != nil {
		h.logger.Error("Failed to list notes", zap.Error(err), zap.Int64("chat_id", chatID))
		return Message{Text: "⚠️ Sorry, failed to retrieve your notes. Please try again later."}
	}
	if len(notes) == 0 {
		return Message{Text: "You don't have any notes yet."}
	}

	response := "*Your notes:*\n"
	for _, n := range notes {
		response += "• " + escapeMarkdown(n.Content) + "\n"
	}
	return Message{Text: response, Markdown: true}
}

func (h *Handler) handleFacts(chatID int64) Message {
	facts := h.session(chatID).Facts()
	if len(facts) == 0 {
		return Message{Text: "I don't know anything about you yet."}
	}

	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	response := "*What I remember:*\n"
	for _, k := range keys {
		response += fmt.Sprintf("%s: %s\n",
			escapeMarkdown(strings.ReplaceAll(k, "_", " ")),
			escapeMarkdown(facts[models.FactKey(k)]))
	}
	return Message{Text: response, Markdown: true}
}

// escapeMarkdown escapes the characters MarkdownV2 reserves.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}
