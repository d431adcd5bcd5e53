package assistant

import (
	"errors"
	"fmt"
	"strings"
)

const defaultDeclineMessage = "Request error."

var ErrEmptyMessage = errors.New("message is required")

// ModelParseError reports a model reply that is not a single JSON object.
type ModelParseError struct {
	Raw string
	Err error
}

func (e *ModelParseError) Error() string {
	return fmt.Sprintf("failed to parse model reply: %v", e.Err)
}

func (e *ModelParseError) Unwrap() error {
	return e.Err
}

type MissingParamsError struct {
	Action string
	Params []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("missing parameters for %s: %s", e.Action, strings.Join(e.Params, ", "))
}

// ModelDeclinedError is the model's own statement that it could not interpret the request.
type ModelDeclinedError struct {
	Message string
}

func (e *ModelDeclinedError) Error() string {
	return e.Message
}

type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Action)
}
