package notify

import (
	"fmt"
	"log"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers one formatted message to the messaging sink
type Sender interface {
	Send(text string) error
}

// TelegramSender posts messages to a fixed chat through the Telegram
// Bot API
type TelegramSender struct {
	bot    *tgbot.BotAPI
	chatID int64
}

// NewTelegramSender authenticates the bot token and binds the chat id
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	bot, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth failed: %w", err)
	}
	log.Printf("Telegram sender ready (bot: %s)", bot.Self.UserName)
	return &TelegramSender{bot: bot, chatID: chatID}, nil
}

// Send delivers the message. A non-200 from the sink surfaces as an
// error; the caller logs it and does not retry within the tick.
func (t *TelegramSender) Send(text string) error {
	msg := tgbot.NewMessage(t.chatID, text)
	_, err := t.bot.Send(msg)
	return err
}
