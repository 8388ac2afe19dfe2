package logger

import (
	"fmt"
	"github.com/maxaizer/jobmatch/internal/config"
	"github.com/maxaizer/jobmatch/pkg/loki"
	log "github.com/sirupsen/logrus"
	"path/filepath"
	"strconv"
)

const lokiSource = "loki"

type logrusAdapter struct{}

func (l *logrusAdapter) Error(msg string, args ...any) {
	log.WithFields(log.Fields{"args": args, "source": lokiSource}).Error(msg)
}

type lokiHook struct {
	pusher   *loki.Pusher
	minLevel log.Level
}

func (h *lokiHook) Fire(entry *log.Entry) error {
	// the pusher reports its own failures through logrus
	if entry.Data["source"] == lokiSource {
		return nil
	}

	caller := ""
	if entry.Caller != nil {
		caller = filepath.Base(entry.Caller.Function) + ":" + strconv.Itoa(entry.Caller.Line)
	}

	fields := make(map[string]string, len(entry.Data))
	for k, v := range entry.Data {
		fields[k] = fmt.Sprint(v)
	}

	h.pusher.Push(loki.Entry{
		Level:   entry.Level.String(),
		Message: entry.Message,
		Caller:  caller,
		Fields:  fields,
		Time:    entry.Time,
	})
	return nil
}

func (h *lokiHook) Levels() []log.Level {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= h.minLevel {
			levels = append(levels, level)
		}
	}
	return levels
}

func addLokiHook(cfg config.LokiConfig, minLevel log.Level) (*loki.Pusher, error) {
	pusher, err := loki.New(loki.Config{
		Url:          cfg.Url,
		Username:     cfg.Username,
		Password:     cfg.Password,
		TenantID:     cfg.TenantID,
		BatchMaxWait: cfg.BatchMaxWait,
		Labels:       map[string]string{"app": "jobmatch"},
	}, &logrusAdapter{})
	if err != nil {
		return nil, err
	}

	log.AddHook(&lokiHook{pusher: pusher, minLevel: minLevel})
	log.Info("Loki logging enabled")
	return pusher, nil
}
