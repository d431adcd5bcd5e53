package validator_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/lomoval/ai-calendar/internal/validator"
	"github.com/stretchr/testify/require"
)

func TestValidateEventDate(t *testing.T) {
	tests := []struct {
		date        string
		expectedErr error
	}{
		{date: "2024-05-01", expectedErr: nil},
		{date: "2024-02-29", expectedErr: nil},
		{date: "2024-13-40", expectedErr: validator.ErrIncorrectDate},
		{date: "2023-02-29", expectedErr: validator.ErrIncorrectDate},
		{date: "05-01-2024", expectedErr: validator.ErrDateFormat},
		{date: "2024-5-1", expectedErr: validator.ErrDateFormat},
		{date: "2024-05-01T10:00", expectedErr: validator.ErrDateFormat},
		{date: "", expectedErr: validator.ErrRequired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.date, func(t *testing.T) {
			t.Parallel()
			err := validator.ValidateEvent(storage.Event{Name: "x", Date: tt.date, Time: "10:00"})
			if tt.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			requireViolation(t, err, "date", tt.expectedErr)
		})
	}
}

func TestValidateEventFields(t *testing.T) {
	valid := storage.Event{Name: "Standup", Date: "2030-01-01", Time: "09:15", Duration: 15}
	require.NoError(t, validator.ValidateEvent(valid))

	e := valid
	e.Name = "   "
	requireViolation(t, validator.ValidateEvent(e), "name", validator.ErrRequired)

	e = valid
	e.Time = "25:00"
	requireViolation(t, validator.ValidateEvent(e), "time", validator.ErrTimeFormat)

	e = valid
	e.Time = "9:15"
	require.NoError(t, validator.ValidateEvent(e))

	e = valid
	e.Time = "9:5"
	requireViolation(t, validator.ValidateEvent(e), "time", validator.ErrTimeFormat)

	e = valid
	e.Time = "123:00"
	requireViolation(t, validator.ValidateEvent(e), "time", validator.ErrTimeFormat)

	e = valid
	e.Duration = -5
	requireViolation(t, validator.ValidateEvent(e), "duration", validator.ErrIncorrectDuration)
}

func TestParseEvent(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e, err := validator.ParseEvent(decode(t, `{"name":"Standup","date":"2030-01-01"}`))
		require.NoError(t, err)
		require.Equal(t, storage.Event{Name: "Standup", Date: "2030-01-01", Time: "00:00", Duration: 0}, e)
	})

	t.Run("all fields", func(t *testing.T) {
		e, err := validator.ParseEvent(decode(t, `{"name":"Standup","date":"2030-01-01","time":"10:30","duration":45}`))
		require.NoError(t, err)
		require.Equal(t, storage.Event{Name: "Standup", Date: "2030-01-01", Time: "10:30", Duration: 45}, e)
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := validator.ParseEvent(decode(t, `{}`))
		var validationErrors validator.ValidationErrors
		require.True(t, errors.As(err, &validationErrors))
		require.Len(t, validationErrors, 2)
		require.Equal(t, "name", validationErrors[0].Field)
		require.ErrorIs(t, validationErrors[0].Err, validator.ErrRequired)
		require.Equal(t, "date", validationErrors[1].Field)
		require.ErrorIs(t, validationErrors[1].Err, validator.ErrRequired)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := validator.ParseEvent(decode(t, `{"name":5,"date":"2030-01-01","time":10,"duration":"long"}`))
		var validationErrors validator.ValidationErrors
		require.True(t, errors.As(err, &validationErrors))
		require.Len(t, validationErrors, 3)
		requireViolation(t, err, "name", validator.ErrNotString)
		requireViolation(t, err, "time", validator.ErrNotString)
		requireViolation(t, err, "duration", validator.ErrIncorrectDuration)
	})

	t.Run("fractional duration", func(t *testing.T) {
		_, err := validator.ParseEvent(decode(t, `{"name":"x","date":"2030-01-01","duration":1.5}`))
		requireViolation(t, err, "duration", validator.ErrIncorrectDuration)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := validator.ParseEvent(decode(t, `{"name":"x","date":"05-01-2024"}`))
		requireViolation(t, err, "date", validator.ErrDateFormat)
	})
}

func decode(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &payload))
	return payload
}

func requireViolation(t *testing.T, err error, field string, expected error) {
	t.Helper()
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors), "expected validation errors, got %v", err)
	for _, v := range validationErrors {
		if v.Field == field {
			require.ErrorIs(t, v.Err, expected)
			return
		}
	}
	require.Failf(t, "violation not found", "field %s in %v", field, err)
}
