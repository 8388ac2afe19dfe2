package config

import (
	"errors"
	"fmt"
	"time"
)

type AuthConfig struct {
	JwtSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

func (config AuthConfig) validate() error {
	var errs []error

	if len(config.JwtSecret) < 16 {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least 16 characters"))
	}
	if config.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be greater than zero"))
	}

	return errors.Join(errs...)
}

func (config AuthConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"auth.jwt_secret": "JWT_SECRET",
		"auth.token_ttl":  "TOKEN_TTL",
	})
}
