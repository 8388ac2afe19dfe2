// Package loki batches log lines and pushes them to a Grafana Loki server.
package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type Logger interface {
	Error(msg string, args ...any)
}

type Config struct {
	// Url of the push endpoint, e.g. https://example-prod.grafana.net/loki/api/v1/push
	Url string `validate:"required,url"`

	// BatchMaxSize is the number of lines that triggers a push before BatchMaxWait elapses.
	BatchMaxSize int `validate:"gte=1"`

	BatchMaxWait time.Duration `validate:"gte=1"`

	// Labels are attached to every stream.
	Labels map[string]string

	// Username and Password enable basic authentication when both are set.
	Username string
	Password string

	// TenantID is sent as X-Scope-OrgID for multi-tenant servers.
	TenantID string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 500
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type Entry struct {
	Level   string            `json:"level"`
	Message string            `json:"msg"`
	Caller  string            `json:"caller,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Time    time.Time         `json:"-"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Pusher collects entries in the background. Entries are grouped into one stream per level.
type Pusher struct {
	config  Config
	client  *http.Client
	logger  Logger
	entries chan Entry
	quit    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	batch   []Entry
}

func New(cfg Config, logger Logger) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	p := &Pusher{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		entries: make(chan Entry, cfg.BatchMaxSize),
		quit:    make(chan struct{}),
		batch:   make([]Entry, 0, cfg.BatchMaxSize),
	}

	p.wg.Add(1)
	go p.run()
	return p, nil
}

// Push queues the entry. It returns false once the pusher is stopped.
func (p *Pusher) Push(e Entry) bool {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	select {
	case <-p.quit:
		return false
	case p.entries <- e:
		return true
	}
}

// Stop sends what is still queued and waits for the last push to finish.
func (p *Pusher) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

func (p *Pusher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	for {
		select {
		case <-p.quit:
			p.drain()
			p.flush()
			return
		case entry := <-p.entries:
			p.batch = append(p.batch, entry)
			if len(p.batch) >= p.config.BatchMaxSize {
				p.flush()
			}
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *Pusher) drain() {
	for {
		select {
		case entry := <-p.entries:
			p.batch = append(p.batch, entry)
		default:
			return
		}
	}
}

func (p *Pusher) flush() {
	if len(p.batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.client.Timeout)
	defer cancel()

	if err := p.send(ctx, p.streams()); err != nil {
		p.logger.Error("failed to send logs", "error", err, "lines", len(p.batch))
	}
	p.batch = p.batch[:0]
}

func (p *Pusher) streams() []stream {
	byLevel := map[string]*stream{}
	var ordered []*stream

	for _, entry := range p.batch {
		s, ok := byLevel[entry.Level]
		if !ok {
			labels := map[string]string{"level": entry.Level}
			for k, v := range p.config.Labels {
				labels[k] = v
			}
			s = &stream{Stream: labels}
			byLevel[entry.Level] = s
			ordered = append(ordered, s)
		}

		line, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		s.Values = append(s.Values, [2]string{strconv.FormatInt(entry.Time.UnixNano(), 10), string(line)})
	}

	result := make([]stream, 0, len(ordered))
	for _, s := range ordered {
		result = append(result, *s)
	}
	return result
}

func (p *Pusher) send(ctx context.Context, streams []stream) error {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	if err := json.NewEncoder(gz).Encode(pushRequest{Streams: streams}); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Url, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	if p.config.TenantID != "" {
		req.Header.Set("X-Scope-OrgID", p.config.TenantID)
	}
	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected response from Loki: %s, body: %s", resp.Status, string(body))
	}
	return nil
}
