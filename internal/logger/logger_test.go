package logger_test

import (
	"testing"

	"github.com/lomoval/ai-calendar/internal/logger"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestPrepareLogger(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.WarnLevel) })

	require.NoError(t, logger.PrepareLogger(logger.Config{Level: "DEBUG"}))
	require.Equal(t, log.DebugLevel, log.GetLevel())

	require.NoError(t, logger.PrepareLogger(logger.Config{Level: "error", Format: "json"}))
	require.Equal(t, log.ErrorLevel, log.GetLevel())
	require.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	require.Error(t, logger.PrepareLogger(logger.Config{Level: "LOUD"}))
	require.Error(t, logger.PrepareLogger(logger.Config{Level: "INFO", Format: "xml"}))
}
