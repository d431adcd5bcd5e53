package main

import (
	"github.com/lomoval/ai-calendar/internal/config"
	"github.com/lomoval/ai-calendar/internal/llm"
	"github.com/lomoval/ai-calendar/internal/logger"
	"github.com/lomoval/ai-calendar/internal/rabbit"
	internalgrpc "github.com/lomoval/ai-calendar/internal/server/grpc"
	internalhttp "github.com/lomoval/ai-calendar/internal/server/http"
	"github.com/lomoval/ai-calendar/internal/storagebuilder"
	"github.com/lomoval/ai-calendar/internal/telegram"
)

type Config struct {
	HTTPServer internalhttp.Config
	GrpcServer internalgrpc.Config
	Logger     logger.Config
	Storage    storagebuilder.Config
	OpenAI     llm.Config
	Rabbit     rabbit.Config
	Telegram   telegram.Config
	// Timezone is an IANA name used for the assistant clock and the ics feed.
	Timezone string
}

func NewConfig(configFile string) (Config, error) {
	c := Config{}
	err := config.Load(configFile, config.Options{
		Defaults: map[string]interface{}{
			"httpServer.host":           "0.0.0.0",
			"httpServer.port":           3000,
			"grpcServer.host":           "127.0.0.1",
			"grpcServer.port":           3001,
			"logger.level":              "INFO",
			"logger.format":             "text",
			"storage.storageType":       "memory",
			"storage.database.driver":   "postgres",
			"storage.database.host":     "127.0.0.1",
			"storage.database.port":     5432,
			"storage.database.database": "calendar",
			"openai.model":              llm.DefaultModel,
			"openai.timeout":            "60s",
			"rabbit.enabled":            false,
			"rabbit.host":               "127.0.0.1",
			"rabbit.port":               5672,
			"rabbit.queue":              "calendar.notify",
			"telegram.enabled":          false,
			"telegram.timeout":          60,
			"timezone":                  "Local",
		},
		Env: map[string]string{
			"openai.apiKey":   "OPENAI_API_KEY",
			"httpServer.port": "PORT",
		},
	}, &c)
	return c, err
}
