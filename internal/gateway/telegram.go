package gateway

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/miseapp/mise/internal/orchestration"
)

type TelegramGateway struct {
	Bot          *tgbotapi.BotAPI
	Orchestrator *orchestration.Orchestrator
}

var _ Messenger = (*TelegramGateway)(nil)

func NewTelegramGateway(token string, orchestrator *orchestration.Orchestrator) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:          bot,
		Orchestrator: orchestrator,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		chatID := update.Message.Chat.ID
		userID := fmt.Sprintf("%d", chatID)

		// Progress lines stream to the chat while long plans execute.
		progress := func(line string) {
			tg.Bot.Send(tgbotapi.NewMessage(chatID, line))
		}

		response := tg.Orchestrator.ProcessMessage(context.Background(), userID, update.Message.Text, progress)
		if response == "" {
			response = "I'm having trouble thinking right now..."
		}

		msg := tgbotapi.NewMessage(chatID, response)
		tg.Bot.Send(msg)
	}
	return nil
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id := 0
	fmt.Sscanf(chatID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(int64(id), text)
	msg.ParseMode = "Markdown"
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
