package main

import (
	"fmt"
	"strings"

	"github.com/lomoval/personal-calendar/internal/logger"
	"github.com/lomoval/personal-calendar/internal/rabbit"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type Config struct {
	Logger logger.Config
	Rabbit rabbit.Config
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	v := viper.New()
	v.SetConfigFile(configFile)

	v.SetDefault("logger.level", "INFO")
	v.SetDefault("rabbit.host", "127.0.0.1")
	v.SetDefault("rabbit.port", "5672")
	v.SetDefault("rabbit.queue", "calendar.events")

	if err := v.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
	}
	for _, key := range v.AllKeys() {
		env := v.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			if err := v.BindEnv(key, env[len(envConfigPrefix):]); err != nil {
				return Config{}, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}
