package main

import (
	"github.com/lomoval/ai-calendar/internal/config"
	"github.com/lomoval/ai-calendar/internal/logger"
	"github.com/lomoval/ai-calendar/internal/rabbit"
	"github.com/lomoval/ai-calendar/internal/scheduler"
	"github.com/lomoval/ai-calendar/internal/storagebuilder"
)

type Config struct {
	Logger    logger.Config
	Rabbit    rabbit.Config
	Storage   storagebuilder.Config
	Scheduler scheduler.Config
	Timezone  string
}

func NewConfig(configFile string) (Config, error) {
	c := Config{}
	err := config.Load(configFile, config.Options{
		Defaults: map[string]interface{}{
			"rabbit.host":               "127.0.0.1",
			"rabbit.port":               5672,
			"rabbit.user":               "user",
			"rabbit.password":           "pass",
			"rabbit.queue":              "calendar.notify",
			"logger.level":              "WARN",
			"logger.format":             "text",
			"storage.storageType":       "memory",
			"storage.database.driver":   "postgres",
			"storage.database.host":     "127.0.0.1",
			"storage.database.port":     5432,
			"storage.database.database": "calendar",
			"scheduler.reminders":       "@every 1m",
			"scheduler.cleanup":         "@daily",
			"scheduler.remindBefore":    "15m",
			"scheduler.retentionDays":   365,
			"timezone":                  "Local",
		},
	}, &c)
	return c, err
}
