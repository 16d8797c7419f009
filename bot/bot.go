// Package bot is the Telegram presentation adapter: it turns updates from
// the bot API into orchestrator events and renders the responses back as
// messages, inline keyboards and document attachments.
package bot

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/tg-session-bot/authclient"
	"github.com/jrsteele09/tg-session-bot/loginflow"
)

// Orchestrator is the slice of the login flow the adapter needs.
type Orchestrator interface {
	Handle(ctx context.Context, event loginflow.Event) (loginflow.Response, error)
}

// Bot runs the long-polling update loop and routes events per conversation.
type Bot struct {
	api        *tgbotapi.BotAPI
	flows      Orchestrator
	miniAppURL string
	log        zerolog.Logger
	queues     *serialQueues
}

// Option modifies the Bot instance.
type Option func(*Bot)

// WithMiniAppURL enables the mini-app button on the start menu.
func WithMiniAppURL(url string) Option {
	return func(b *Bot) {
		b.miniAppURL = url
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bot) {
		b.log = log
	}
}

// New authenticates against the bot API and prepares the adapter.
func New(token string, flows Orchestrator, options ...Option) (*Bot, error) {
	if flows == nil {
		return nil, errors.New("[bot.New] orchestrator is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "[bot.New] tgbotapi.NewBotAPI")
	}

	b := &Bot{
		api:    api,
		flows:  flows,
		log:    zerolog.Nop(),
		queues: newSerialQueues(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b, nil
}

// Run consumes updates until the context is cancelled. Updates for the same
// chat are processed in arrival order; distinct chats in parallel.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Str("username", b.api.Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}
	b.queues.enqueue(chatID, func() {
		b.handleUpdate(ctx, update)
	})
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, false
	}
}

func conversationID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.WebAppData != nil:
		b.handleWebAppData(update.Message)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	var ack string
	var event *loginflow.Event
	switch query.Data {
	case callbackPyrogram:
		ack = "Starting Pyrogram session generation..."
		event = &loginflow.Event{Kind: loginflow.EventButtonPress, Payload: authclient.BackendPyrogram.String()}
	case callbackTelethon:
		ack = "Starting Telethon session generation..."
		event = &loginflow.Event{Kind: loginflow.EventButtonPress, Payload: authclient.BackendTelethon.String()}
	case callbackGenerateAgain:
		event = &loginflow.Event{Kind: loginflow.EventCommand, Payload: loginflow.PayloadStart}
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, ack)); err != nil {
		b.log.Warn().Err(err).Msg("answer callback query")
	}
	if event == nil {
		return
	}

	event.ConversationID = conversationID(chatID)
	b.forward(ctx, chatID, *event)

	if query.Data == callbackGenerateAgain {
		b.sendMenu(chatID)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.forward(ctx, chatID, loginflow.Event{
			ConversationID: conversationID(chatID),
			Kind:           loginflow.EventCommand,
			Payload:        loginflow.PayloadStart,
		})
		b.sendMenu(chatID)
	case "cancel":
		b.forward(ctx, chatID, loginflow.Event{
			ConversationID: conversationID(chatID),
			Kind:           loginflow.EventCommand,
			Payload:        loginflow.PayloadCancel,
		})
		b.sendText(chatID, cancelledText)
	}
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	b.forward(ctx, message.Chat.ID, loginflow.Event{
		ConversationID: conversationID(message.Chat.ID),
		Kind:           loginflow.EventText,
		Payload:        message.Text,
	})
}

// forward hands the event to the orchestrator and renders the response.
func (b *Bot) forward(ctx context.Context, chatID int64, event loginflow.Event) {
	resp, err := b.flows.Handle(ctx, event)
	if err != nil {
		b.log.Error().Err(err).Msg("orchestrator rejected event")
		return
	}
	b.deliver(chatID, resp)
}

func (b *Bot) deliver(chatID int64, resp loginflow.Response) {
	rendered, ok := renderResponse(resp)
	if !ok {
		return
	}

	if rendered.hasDocument {
		doc := tgbotapi.NewDocument(chatID, rendered.document)
		doc.Caption = rendered.caption
		doc.ParseMode = tgbotapi.ModeMarkdown
		if rendered.keyboard != nil {
			doc.ReplyMarkup = *rendered.keyboard
		}
		b.send(doc)
		return
	}

	msg := tgbotapi.NewMessage(chatID, rendered.text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if rendered.keyboard != nil {
		msg.ReplyMarkup = *rendered.keyboard
	}
	b.send(msg)
}

func (b *Bot) sendMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, welcomeText)
	msg.ReplyMarkup = mainMenuKeyboard(b.miniAppURL)
	b.send(msg)
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Msg("send message")
	}
}
