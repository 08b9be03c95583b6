package notify

import (
	"errors"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier delivers rendered notifications as direct messages from
// the alert bot. Only users who linked the bot (TelegramChatID set) can be
// reached.
type TelegramNotifier struct {
	BotAPI *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Telegram notifier authorized on account %s", bot.Self.UserName)

	return &TelegramNotifier{BotAPI: bot}, nil
}

func (t *TelegramNotifier) Send(n *RenderedNotification) error {
	if n.TelegramChatID == "" {
		return errors.New("recipient has no linked telegram chat")
	}
	chatID, err := strconv.ParseInt(n.TelegramChatID, 10, 64)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, n.TextBody)
	_, err = t.BotAPI.Send(msg)
	return err
}
