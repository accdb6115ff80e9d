// Package bot is a Telegram text transport for conversation sessions.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *zap.Logger
}

func New(token string, handler *Handler, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	return &Bot{
		api:     api,
		handler: handler,
		logger:  logger,
	}, nil
}

// Start long-polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.send(message.Chat.ID, 0, b.handler.HandleCommand(ctx, message.Chat.ID, message.Command()))
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}

	reply, err := b.handler.HandleText(ctx, message.Chat.ID, content)
	if err != nil {
		// Only cancellation gets here; the process is shutting down.
		b.logger.Warn("Turn abandoned",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		return
	}
	b.send(message.Chat.ID, message.MessageID, reply)
}

func (b *Bot) send(chatID int64, replyToID int, m Message) {
	msg := tgbotapi.NewMessage(chatID, m.Text)
	if m.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdownV2
	}
	msg.ReplyToMessageID = replyToID

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
