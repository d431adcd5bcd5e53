package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lomoval/ai-calendar/internal/app"
	"github.com/lomoval/ai-calendar/internal/assistant"
	"github.com/lomoval/ai-calendar/internal/llm"
	"github.com/lomoval/ai-calendar/internal/logger"
	"github.com/lomoval/ai-calendar/internal/rabbit"
	internalgrpc "github.com/lomoval/ai-calendar/internal/server/grpc"
	internalhttp "github.com/lomoval/ai-calendar/internal/server/http"
	"github.com/lomoval/ai-calendar/internal/storagebuilder"
	"github.com/lomoval/ai-calendar/internal/telegram"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	if flag.Arg(0) == "version" {
		printVersion()
		return
	}

	config, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	err = logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	if config.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY is not set, assistant requests will fail")
	}

	stor, err := storagebuilder.New(config.Storage)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	var publisher app.Publisher
	if config.Rabbit.Enabled {
		r := rabbit.New(config.Rabbit)
		if err := r.Connect(); err != nil {
			log.Errorf("notifications are disabled: %v", err)
		} else {
			defer r.Close()
			publisher = r
		}
	}

	calendar := app.New(stor, publisher)
	interpreter := assistant.New(llm.New(config.OpenAI), calendar)
	server := internalhttp.NewServer(config.HTTPServer, calendar, interpreter, internalhttp.WithLocation(location))
	grpcServer := internalgrpc.NewServer(config.GrpcServer, calendar, interpreter, location)

	var bot *telegram.Bot
	if config.Telegram.Enabled {
		bot, err = telegram.New(config.Telegram, interpreter, location)
		if err != nil {
			log.Errorf("telegram is disabled: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	go func() {
		if err := grpcServer.Start(ctx); err != nil {
			log.Error("failed to start grpc server: " + err.Error())
			cancel()
		}
	}()
	if bot != nil {
		go func() {
			if err := bot.Start(ctx); err != nil {
				log.Error("telegram bot stopped: " + err.Error())
			}
		}()
	}

	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if bot != nil {
			if err := bot.Stop(ctx); err != nil {
				log.Error("failed to stop telegram bot: " + err.Error())
			}
		}
		if err := grpcServer.Stop(ctx); err != nil {
			log.Error("failed to stop grpc server: " + err.Error())
		}
		if err := server.Stop(ctx); err != nil {
			log.Error("failed to stop http server: " + err.Error())
		}
	}()

	log.Info("calendar is running...")

	if err := server.Start(ctx); err != nil {
		log.Error("failed to start http server: " + err.Error())
		cancel()
	}

	ctx, cancelClose := context.WithTimeout(context.Background(), time.Second*3)
	defer cancelClose()
	if err := stor.Close(ctx); err != nil {
		log.Errorf("failed to close storage: %v", err)
	}
}
