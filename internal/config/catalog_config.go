package config

import (
	"fmt"
	"github.com/robfig/cron/v3"
)

type CatalogConfig struct {
	DefaultPageSize int    `mapstructure:"default_page_size"`
	StatsSchedule   string `mapstructure:"stats_schedule"`
}

func (config CatalogConfig) validate() error {
	if config.DefaultPageSize <= 0 {
		return fmt.Errorf("default_page_size must be greater than zero")
	}
	if _, err := cron.ParseStandard(config.StatsSchedule); err != nil {
		return fmt.Errorf("invalid stats_schedule %q: %w", config.StatsSchedule, err)
	}
	return nil
}

func (config CatalogConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"catalog.default_page_size": "CATALOG_PAGE_SIZE",
		"catalog.stats_schedule":    "CATALOG_STATS_SCHEDULE",
	})
}
