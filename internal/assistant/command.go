package assistant

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	ActionCreateEvent  = "createEvent"
	ActionListEvents   = "listEvents"
	ActionGetEventByID = "getEventById"
	ActionError        = "error"
)

// Command is a decoded model reply. The set of implementations is closed.
type Command interface {
	Action() string
	command()
}

type CreateEvent struct {
	Name     string
	Date     string
	Time     string
	Duration int
	// Missing lists required parameters absent from the reply.
	Missing []string
}

type ListEvents struct{}

type GetEventByID struct {
	ID      int64
	Missing bool
}

// Declined is the "error" action.
type Declined struct {
	Message string
}

type Unknown struct {
	Name string
}

func (CreateEvent) Action() string  { return ActionCreateEvent }
func (ListEvents) Action() string   { return ActionListEvents }
func (GetEventByID) Action() string { return ActionGetEventByID }
func (Declined) Action() string     { return ActionError }
func (u Unknown) Action() string    { return u.Name }

func (CreateEvent) command()  {}
func (ListEvents) command()   {}
func (GetEventByID) command() {}
func (Declined) command()     {}
func (Unknown) command()      {}

type params map[string]json.RawMessage

// ParseReply decodes raw model output. Only output that is not a single JSON
// value is a *ModelParseError. A value that is not an object, or whose
// "action" is not a string, decodes to Unknown. A "params" that is not an
// object is treated as empty.
func ParseReply(raw string) (Command, error) {
	trimmed := strings.TrimSpace(raw)
	var value json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, &ModelParseError{Raw: raw, Err: err}
	}

	var fields map[string]json.RawMessage
	if !strings.HasPrefix(trimmed, "{") || json.Unmarshal(value, &fields) != nil {
		return Unknown{}, nil
	}

	var action string
	if err := json.Unmarshal(fields["action"], &action); err != nil {
		return Unknown{}, nil
	}

	p := params{}
	if err := json.Unmarshal(fields["params"], &p); err != nil || p == nil {
		p = params{}
	}

	switch action {
	case ActionCreateEvent:
		return parseCreateEvent(p), nil
	case ActionListEvents:
		return ListEvents{}, nil
	case ActionGetEventByID:
		id, ok := p.integer("id")
		return GetEventByID{ID: id, Missing: !ok}, nil
	case ActionError:
		msg, ok := p.str("message")
		if !ok {
			msg = defaultDeclineMessage
		}
		return Declined{Message: msg}, nil
	default:
		return Unknown{Name: action}, nil
	}
}

func parseCreateEvent(p params) CreateEvent {
	var (
		c  CreateEvent
		ok bool
	)
	if c.Name, ok = p.str("name"); !ok {
		c.Missing = append(c.Missing, "name")
	}
	if c.Date, ok = p.str("date"); !ok {
		c.Missing = append(c.Missing, "date")
	}
	if c.Time, ok = p.str("time"); !ok {
		c.Missing = append(c.Missing, "time")
	}
	duration, ok := p.integer("duration")
	if !ok || duration > math.MaxInt32 || duration < math.MinInt32 {
		c.Missing = append(c.Missing, "duration")
	}
	c.Duration = int(duration)
	return c
}

// str returns a non-empty string parameter.
func (p params) str(key string) (string, bool) {
	raw, ok := p[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// integer returns a non-zero whole number given either as a JSON number or a numeric string.
func (p params) integer(key string) (int64, bool) {
	raw, ok := p[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	}
	if f == 0 || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
