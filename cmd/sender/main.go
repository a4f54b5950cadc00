package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lomoval/personal-calendar/internal/logger"
	"github.com/lomoval/personal-calendar/internal/rabbit"
	log "github.com/sirupsen/logrus"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/sender_config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

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

	r := rabbit.New(config.Rabbit)
	if err := r.Connect(); err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	defer r.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	log.Info("sender is waiting for event changes...")
	err = r.Consume(ctx, report)
	if err != nil {
		log.Errorf("failed to consume event changes: %v", err)
	}
}

func report(m rabbit.Message) {
	entry := log.WithField("action", m.Action).WithField("id", m.ID)
	if m.Title != "" {
		entry = entry.WithField("title", m.Title).WithField("start_date", m.StartDate)
	}
	entry.Info("event changed")
}
