package error_notificator

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender — то, что нужно от бота (у *tgbotapi.BotAPI есть).
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramInfra struct {
	bot    Sender
	chatID int64
	log    *zap.Logger
}

func NewTelegramInfra(bot Sender, chatID int64, log *zap.Logger) *TelegramInfra {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramInfra{bot: bot, chatID: chatID, log: log}
}

// NewTelegramBot — бот по токену (проверяет токен запросом getMe).
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return bot, nil
}

func (i *TelegramInfra) Notify(ctx context.Context, source string, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Conversion failed (%s)\n\nError: %v\n\nDetails: %s",
		source,
		err,
		details,
	)

	msg := tgbotapi.NewMessage(i.chatID, text)

	if _, sendErr := i.bot.Send(msg); sendErr != nil {
		i.log.Warn("telegram notification failed", zap.Int64("chat", i.chatID), zap.Error(sendErr))
		return sendErr
	}
	return nil
}

// LogInfra — когда Telegram не настроен: только лог.
type LogInfra struct {
	log *zap.Logger
}

func NewLogInfra(log *zap.Logger) *LogInfra {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogInfra{log: log}
}

func (i *LogInfra) Notify(_ context.Context, source string, err error, details string) error {
	i.log.Error("conversion failed",
		zap.String("source", source),
		zap.String("details", details),
		zap.Error(err),
	)
	return nil
}
