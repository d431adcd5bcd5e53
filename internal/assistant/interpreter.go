//go:generate mockgen -source=interpreter.go -destination=mocks_test.go -package=assistant_test

package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lomoval/ai-calendar/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Completer sends a system instruction and a user message to a model and
// returns its text reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Events interface {
	CreateEvent(ctx context.Context, e storage.Event) (storage.Event, error)
	ListEvents(ctx context.Context) ([]storage.Event, error)
	GetEvent(ctx context.Context, id int64) (storage.Event, error)
}

type Result struct {
	Action string      `json:"action"`
	Result interface{} `json:"result"`
}

type Interpreter struct {
	completer Completer
	events    Events
}

func New(completer Completer, events Events) *Interpreter {
	return &Interpreter{completer: completer, events: events}
}

// Interpret asks the model to turn message into a command and executes it.
// now is the wall clock the model resolves relative dates against.
func (i *Interpreter) Interpret(ctx context.Context, message string, now time.Time) (Result, error) {
	if strings.TrimSpace(message) == "" {
		return Result{}, ErrEmptyMessage
	}

	raw, err := i.completer.Complete(ctx, SystemPrompt(now), message)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get model reply: %w", err)
	}
	log.WithField("reply", raw).Debug("model replied")

	cmd, err := ParseReply(raw)
	if err != nil {
		return Result{}, err
	}
	return i.Dispatch(ctx, cmd)
}

// Dispatch executes a decoded command against the events.
func (i *Interpreter) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	log.WithField("action", cmd.Action()).Debug("dispatching command")

	switch c := cmd.(type) {
	case CreateEvent:
		if len(c.Missing) > 0 {
			return Result{}, &MissingParamsError{Action: ActionCreateEvent, Params: c.Missing}
		}
		e, err := i.events.CreateEvent(ctx, storage.Event{Name: c.Name, Date: c.Date, Time: c.Time, Duration: c.Duration})
		if err != nil {
			return Result{}, err
		}
		return Result{Action: ActionCreateEvent, Result: e}, nil
	case ListEvents:
		events, err := i.events.ListEvents(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Action: ActionListEvents, Result: events}, nil
	case GetEventByID:
		if c.Missing {
			return Result{}, &MissingParamsError{Action: ActionGetEventByID, Params: []string{"id"}}
		}
		e, err := i.events.GetEvent(ctx, c.ID)
		if err != nil {
			return Result{}, err
		}
		return Result{Action: ActionGetEventByID, Result: e}, nil
	case Declined:
		return Result{}, &ModelDeclinedError{Message: c.Message}
	case Unknown:
		return Result{}, &UnknownActionError{Action: c.Name}
	default:
		return Result{}, &UnknownActionError{Action: cmd.Action()}
	}
}
