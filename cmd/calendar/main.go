package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lomoval/personal-calendar/internal/app"
	"github.com/lomoval/personal-calendar/internal/logger"
	"github.com/lomoval/personal-calendar/internal/rabbit"
	internalgrpc "github.com/lomoval/personal-calendar/internal/server/grpc"
	internalhttp "github.com/lomoval/personal-calendar/internal/server/http"
	"github.com/lomoval/personal-calendar/internal/storagebuilder"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 3 * time.Second

var (
	configFile string
	envFile    string
)

func init() {
	flag.StringVar(&configFile, "config", "./configs/config.yaml", "Path to configuration file")
	flag.StringVar(&envFile, "env", ".env", "Path to optional .env file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Errorf("calendar failed: %v", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := NewConfig(configFile, envFile)
	if err != nil {
		return err
	}
	if err = logger.PrepareLogger(config.Logger); err != nil {
		return err
	}

	stor, err := storagebuilder.New(config.Storage)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := stor.Close(ctx); err != nil {
			log.Errorf("failed to close storage: %v", err)
		}
	}()

	var opts []app.Option
	if config.Rabbit.Enabled {
		r := rabbit.New(config.Rabbit)
		if err := r.Connect(); err != nil {
			return err
		}
		defer r.Close()
		opts = append(opts, app.WithNotifier(r))
	}
	calendar := app.New(stor, opts...)

	httpServer, err := internalhttp.NewServer(config.HTTPServer, calendar)
	if err != nil {
		return err
	}
	var grpcServer *internalgrpc.Server
	if config.GrpcServer.Enabled {
		grpcServer = internalgrpc.NewServer(config.GrpcServer, calendar)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	errs := make(chan error, 2)
	go func() {
		errs <- httpServer.Start(ctx)
	}()
	if grpcServer != nil {
		go func() {
			errs <- grpcServer.Start(ctx)
		}()
	}

	log.Info("calendar is running...")

	select {
	case <-ctx.Done():
	case err = <-errs:
		log.Errorf("server stopped: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := httpServer.Stop(stopCtx); err != nil {
		log.Error("failed to stop http server: " + err.Error())
	}
	if grpcServer != nil {
		if err := grpcServer.Stop(stopCtx); err != nil {
			log.Error("failed to stop grpc server: " + err.Error())
		}
	}
	return err
}
