package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TelegramNotifier sends notifications to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	l      *zap.Logger
}

// NewTelegramNotifier connects the bot API with the given token.
func NewTelegramNotifier(token string, chatID int64, l *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect telegram bot")
	}
	l.Info("telegram connected", zap.String("bot", bot.Self.UserName))

	return &TelegramNotifier{bot: bot, chatID: chatID, l: l}, nil
}

// Notify sends the message to the configured chat. Failures are logged,
// never returned.
func (n *TelegramNotifier) Notify(_ context.Context, accountID, message string) {
	msg := tgbotapi.NewMessage(n.chatID, message)
	if _, err := n.bot.Send(msg); err != nil {
		n.l.Warn("failed to send telegram notification",
			zap.String("account", accountID), zap.Error(err))
	}
}
