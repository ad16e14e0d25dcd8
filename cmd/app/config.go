package main

import (
	"fmt"
	"strings"

	"github.com/NaePawat/zentry-backend-challenge/internal/ingest"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database  repository.Config `yaml:"database"`
	Server    ServerConfig      `yaml:"server"`
	Scheduler ingest.Config     `yaml:"scheduler"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("scheduler.intervalSeconds", 10)
	viper.SetDefault("scheduler.eventsPerTick", 5000)
	viper.SetDefault("scheduler.concurrency", ingest.DefaultConcurrency)
	viper.SetDefault("scheduler.subBatchSize", ingest.DefaultSubBatchSize)
	viper.SetDefault("scheduler.maxReferralDepth", 5)
	viper.SetDefault("logLevel", "info")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
