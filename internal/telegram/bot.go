package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lomoval/ai-calendar/internal/assistant"
	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/lomoval/ai-calendar/internal/validator"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Enabled bool
	Token   string
	// Timeout is the long polling timeout in seconds.
	Timeout int
}

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

type Assistant interface {
	Interpret(ctx context.Context, message string, now time.Time) (assistant.Result, error)
}

type Bot struct {
	api       API
	assistant Assistant
	location  *time.Location
	timeout   int
	now       func() time.Time
}

func New(config Config, assistant Assistant, location *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Infof("authorized on telegram account %s", api.Self.UserName)
	return NewWithAPI(api, config.Timeout, assistant, location), nil
}

func NewWithAPI(api API, timeout int, assistant Assistant, location *time.Location) *Bot {
	if location == nil {
		location = time.Local
	}
	return &Bot{api: api, assistant: assistant, location: location, timeout: timeout, now: time.Now}
}

// Start answers text messages until ctx is done or the updates channel closes.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) Stop(_ context.Context) error {
	b.api.StopReceivingUpdates()
	return nil
}

func (b *Bot) handle(ctx context.Context, m *tgbotapi.Message) {
	logger := log.WithField("chat", m.Chat.ID)
	if m.From != nil {
		logger = logger.WithField("user", m.From.UserName)
	}
	logger.Debug("telegram message received")

	res, err := b.assistant.Interpret(ctx, m.Text, b.now().In(b.location))
	if err != nil {
		logger.Warnf("assistant request failed: %v", err)
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, Reply(res, err))
	msg.ReplyToMessageID = m.MessageID
	if _, err := b.api.Send(msg); err != nil {
		logger.Errorf("failed to send telegram message: %v", err)
	}
}

// Reply renders an assistant outcome as chat text.
func Reply(res assistant.Result, err error) string {
	if err != nil {
		return errorReply(err)
	}

	switch v := res.Result.(type) {
	case storage.Event:
		if res.Action == assistant.ActionCreateEvent {
			return "Event created: " + formatEvent(v)
		}
		return formatEvent(v)
	case []storage.Event:
		if len(v) == 0 {
			return "You have no events."
		}
		lines := make([]string, 0, len(v))
		for _, e := range v {
			lines = append(lines, formatEvent(e))
		}
		return strings.Join(lines, "\n")
	default:
		return "Done."
	}
}

func errorReply(err error) string {
	var (
		validationErr validator.ValidationErrors
		parseErr      *assistant.ModelParseError
		missingErr    *assistant.MissingParamsError
		declinedErr   *assistant.ModelDeclinedError
		unknownErr    *assistant.UnknownActionError
	)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		return "Message is required."
	case errors.Is(err, storage.ErrNotFoundEvent):
		return "Event not found."
	case errors.As(err, &validationErr):
		return "Invalid event: " + validationErr.Error() + "."
	case errors.As(err, &missingErr):
		return "Please specify: " + strings.Join(missingErr.Params, ", ") + "."
	case errors.As(err, &declinedErr):
		return declinedErr.Message
	case errors.As(err, &unknownErr):
		return "Unknown action."
	case errors.As(err, &parseErr):
		return "Sorry, I could not understand the model response."
	default:
		return "Sorry, something went wrong. Try again later."
	}
}

func formatEvent(e storage.Event) string {
	return fmt.Sprintf("#%d %s on %s at %s (%d min)", e.ID, e.Name, e.Date, e.Time, e.Duration)
}
