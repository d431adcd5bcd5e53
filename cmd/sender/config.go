package main

import (
	"github.com/lomoval/ai-calendar/internal/config"
	"github.com/lomoval/ai-calendar/internal/logger"
	"github.com/lomoval/ai-calendar/internal/rabbit"
)

type Config struct {
	Logger logger.Config
	Rabbit rabbit.Config
}

func NewConfig(configFile string) (Config, error) {
	c := Config{}
	err := config.Load(configFile, config.Options{
		Defaults: map[string]interface{}{
			"rabbit.host":     "127.0.0.1",
			"rabbit.port":     5672,
			"rabbit.user":     "user",
			"rabbit.password": "pass",
			"rabbit.queue":    "calendar.notify",
			"logger.level":    "INFO",
			"logger.format":   "text",
		},
	}, &c)
	return c, err
}
