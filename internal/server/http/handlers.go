package internalhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lomoval/ai-calendar/internal/assistant"
	"github.com/lomoval/ai-calendar/internal/ics"
	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/lomoval/ai-calendar/internal/validator"
	log "github.com/sirupsen/logrus"
)

const (
	errEventNotFound     = "Event not found."
	errInvalidBody       = "Invalid JSON body."
	errMessageRequired   = "Message is required."
	errModelParse        = "Error parsing model response."
	errUnknownAction     = "Unknown action."
	errMissingCreateArgs = "Missing parameters for creating event."
	errMissingID         = `Missing "id" parameter for event lookup.`
	msgEventRemoved      = "Event removed successfully."
)

type errorResponse struct {
	Error       string   `json:"error"`
	RawResponse string   `json:"rawResponse,omitempty"`
	Missing     []string `json:"missing,omitempty"`
}

type violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationResponse struct {
	Errors []violation `json:"errors"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type assistantRequest struct {
	Message string `json:"message"`
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	events, err := s.app.ListEvents(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, ok := parseID(pathParams)
	if !ok {
		writeError(w, http.StatusNotFound, errEventNotFound)
		return
	}
	e, err := s.app.GetEvent(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	e, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	created, err := s.app.CreateEvent(r.Context(), e)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	e, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	id, ok := parseID(pathParams)
	if !ok {
		writeError(w, http.StatusNotFound, errEventNotFound)
		return
	}
	updated, err := s.app.UpdateEvent(r.Context(), id, e)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) removeEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, ok := parseID(pathParams)
	if !ok {
		writeError(w, http.StatusNotFound, errEventNotFound)
		return
	}
	if err := s.app.RemoveEvent(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgEventRemoved})
}

func (s *Server) exportEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	events, err := s.app.ListEvents(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ics.Export(events, s.location, s.now(), r.Host)))
}

func (s *Server) askAssistant(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errMessageRequired)
		return
	}

	res, err := s.assistant.Interpret(r.Context(), req.Message, s.now().In(s.location))
	if err != nil {
		s.metrics.command(outcome(err))
		writeAssistantFailure(w, err)
		return
	}
	s.metrics.command(res.Action)
	writeJSON(w, http.StatusOK, res)
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (storage.Event, bool) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return storage.Event{}, false
	}
	e, err := validator.ParseEvent(payload)
	if err != nil {
		writeFailure(w, err)
		return storage.Event{}, false
	}
	return e, true
}

func parseID(pathParams map[string]string) (int64, bool) {
	id, err := strconv.ParseInt(pathParams["id"], 10, 64)
	return id, err == nil
}

func outcome(err error) string {
	var (
		parseErr      *assistant.ModelParseError
		missingErr    *assistant.MissingParamsError
		declinedErr   *assistant.ModelDeclinedError
		unknownErr    *assistant.UnknownActionError
		validationErr validator.ValidationErrors
	)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		return "empty_message"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.As(err, &missingErr):
		return "missing_params"
	case errors.As(err, &validationErr):
		return "validation_error"
	case errors.As(err, &declinedErr):
		return "declined"
	case errors.As(err, &unknownErr):
		return "unknown_action"
	case errors.Is(err, storage.ErrNotFoundEvent):
		return "not_found"
	default:
		return "failed"
	}
}

func writeAssistantFailure(w http.ResponseWriter, err error) {
	var (
		parseErr    *assistant.ModelParseError
		missingErr  *assistant.MissingParamsError
		declinedErr *assistant.ModelDeclinedError
		unknownErr  *assistant.UnknownActionError
	)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, errMessageRequired)
	case errors.As(err, &parseErr):
		log.WithField("reply", parseErr.Raw).Errorf("failed to parse model reply: %v", parseErr.Err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errModelParse, RawResponse: parseErr.Raw})
	case errors.As(err, &missingErr):
		msg := errMissingCreateArgs
		if missingErr.Action == assistant.ActionGetEventByID {
			msg = errMissingID
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Missing: missingErr.Params})
	case errors.As(err, &declinedErr):
		writeError(w, http.StatusBadRequest, declinedErr.Message)
	case errors.As(err, &unknownErr):
		writeError(w, http.StatusBadRequest, errUnknownAction)
	default:
		writeFailure(w, err)
	}
}

// writeFailure renders validation, not found and infrastructure errors.
func writeFailure(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		resp := validationResponse{Errors: make([]violation, 0, len(validationErrors))}
		for _, v := range validationErrors {
			resp.Errors = append(resp.Errors, violation{Field: v.Field, Message: v.Err.Error()})
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, storage.ErrNotFoundEvent):
		writeError(w, http.StatusNotFound, errEventNotFound)
	default:
		log.Errorf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}
