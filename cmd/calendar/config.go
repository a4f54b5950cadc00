package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lomoval/personal-calendar/internal/logger"
	"github.com/lomoval/personal-calendar/internal/rabbit"
	internalgrpc "github.com/lomoval/personal-calendar/internal/server/grpc"
	internalhttp "github.com/lomoval/personal-calendar/internal/server/http"
	"github.com/lomoval/personal-calendar/internal/storagebuilder"
	"github.com/spf13/viper"
)

const (
	envConfigPrefix = "$env:"
	envPort         = "PORT"
)

type Config struct {
	HTTPServer internalhttp.Config
	GrpcServer internalgrpc.Config
	Logger     logger.Config
	Storage    storagebuilder.Config
	Rabbit     rabbit.Config
}

// NewConfig reads configFile. Values of the form "$env:NAME" are taken from
// the NAME environment variable, which may come from an optional .env file.
func NewConfig(configFile, envFile string) (Config, error) {
	config := Config{}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to load env file %q: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigFile(configFile)

	v.SetDefault("httpServer.host", "127.0.0.1")
	v.SetDefault("httpServer.port", "3001")
	v.SetDefault("httpServer.mode", internalhttp.ModeProduction)
	v.SetDefault("grpcServer.enabled", false)
	v.SetDefault("grpcServer.host", "127.0.0.1")
	v.SetDefault("grpcServer.port", "3002")
	v.SetDefault("logger.level", "WARN")
	v.SetDefault("logger.format", logger.FormatText)
	v.SetDefault("storage.storageType", storagebuilder.TypeSQLite)
	v.SetDefault("storage.sqlite.path", "./calendar.db")
	v.SetDefault("rabbit.enabled", false)
	v.SetDefault("rabbit.queue", "calendar.events")

	err := v.ReadInConfig()
	if err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
	}
	keys := v.AllKeys()
	for _, key := range keys {
		env := v.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := v.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return Config{}, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if port := os.Getenv(envPort); port != "" {
		config.HTTPServer.Port, err = strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect %s %q: %w", envPort, port, err)
		}
	}
	return config, nil
}
