package config

import (
	"errors"
	"fmt"
)

type ServerConfig struct {
	Port                  int      `mapstructure:"port"`
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AuthRequestsPerSecond float64  `mapstructure:"auth_requests_per_second"`
	AuthBurst             int      `mapstructure:"auth_burst"`
}

func (config ServerConfig) validate() error {
	var errs []error

	if config.Port <= 0 || config.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", config.Port))
	}
	if config.AuthRequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("auth_requests_per_second must be greater than zero"))
	}
	if config.AuthBurst <= 0 {
		errs = append(errs, fmt.Errorf("auth_burst must be greater than zero"))
	}

	return errors.Join(errs...)
}

func (config ServerConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"server.port":                     "PORT",
		"server.allowed_origins":          "ALLOWED_ORIGINS",
		"server.auth_requests_per_second": "AUTH_REQUESTS_PER_SECOND",
		"server.auth_burst":               "AUTH_BURST",
	})
}
