package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

type logLevel string

const (
	LevelInfo    logLevel = "INFO"
	LevelDebug   logLevel = "DEBUG"
	LevelWarning logLevel = "WARNING"
	LevelError   logLevel = "ERROR"
	LevelFatal   logLevel = "FATAL"
)

type LoggerConfig struct {
	LogLevel   logLevel   `mapstructure:"log_level"`
	OutputFile string     `mapstructure:"output_file"`
	Loki       LokiConfig `mapstructure:"loki"`
}

// LokiConfig enables log shipping when Url is set.
type LokiConfig struct {
	Url          string        `mapstructure:"url"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	TenantID     string        `mapstructure:"tenant_id"`
	BatchMaxWait time.Duration `mapstructure:"batch_max_wait"`
}

func (config LoggerConfig) validate() error {
	var errs []error

	switch config.LogLevel {
	case "":
		errs = append(errs, fmt.Errorf("missing variable: log_level"))
	case LevelInfo, LevelDebug, LevelWarning, LevelError, LevelFatal:
	default:
		errs = append(errs, fmt.Errorf("unknown log_level: %s", config.LogLevel))
	}
	if config.OutputFile == "" {
		errs = append(errs, fmt.Errorf("missing variable: output_file"))
	}
	if config.Loki.Url != "" {
		if _, err := url.ParseRequestURI(config.Loki.Url); err != nil {
			errs = append(errs, fmt.Errorf("invalid loki url: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config LoggerConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"logger.log_level":           "LOG_LEVEL",
		"logger.output_file":         "LOG_OUTPUT_FILE",
		"logger.loki.url":            "LOKI_URL",
		"logger.loki.username":       "LOKI_USERNAME",
		"logger.loki.password":       "LOKI_PASSWORD",
		"logger.loki.tenant_id":      "LOKI_TENANT_ID",
		"logger.loki.batch_max_wait": "LOKI_BATCH_MAX_WAIT",
	})
}
