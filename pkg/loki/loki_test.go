package loki

import (
	"compress/gzip"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func Test_New_ValidatesConfig(t *testing.T) {
	_, err := New(Config{}, &recordingLogger{})
	assert.Error(t, err)

	pusher, err := New(Config{Url: "http://localhost:3100/loki/api/v1/push"}, &recordingLogger{})
	require.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, 500, pusher.config.BatchMaxSize)
	assert.Equal(t, 5*time.Second, pusher.config.BatchMaxWait)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func Test_Pusher_StopFlushesStreamsByLevel(t *testing.T) {
	requests := make(chan pushRequest, 1)
	tenants := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenants <- r.Header.Get("X-Scope-OrgID")
		var request pushRequest
		if gz, err := gzip.NewReader(r.Body); err == nil {
			_ = json.NewDecoder(gz).Decode(&request)
		}
		requests <- request
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	logger := &recordingLogger{}
	pusher, err := New(Config{
		Url:          server.URL,
		BatchMaxWait: time.Hour,
		Labels:       map[string]string{"app": "jobmatch"},
		TenantID:     "team-a",
	}, logger)
	require.NoError(t, err)

	assert.True(t, pusher.Push(Entry{Level: "error", Message: "first"}))
	assert.True(t, pusher.Push(Entry{Level: "info", Message: "second"}))
	assert.True(t, pusher.Push(Entry{Level: "error", Message: "third"}))
	pusher.Stop()

	assert.False(t, pusher.Push(Entry{Level: "info", Message: "late"}))
	assert.Empty(t, logger.messages)
	assert.Equal(t, "team-a", <-tenants)
	received := <-requests
	require.Len(t, received.Streams, 2)
	assert.Equal(t, map[string]string{"app": "jobmatch", "level": "error"}, received.Streams[0].Stream)
	assert.Len(t, received.Streams[0].Values, 2)
	assert.Len(t, received.Streams[1].Values, 1)

	var line Entry
	require.NoError(t, json.Unmarshal([]byte(received.Streams[1].Values[0][1]), &line))
	assert.Equal(t, "second", line.Message)
}

func Test_Pusher_ReportsRejectedPush(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	logger := &recordingLogger{}
	pusher, err := New(Config{Url: server.URL, BatchMaxSize: 1, BatchMaxWait: time.Hour}, logger)
	require.NoError(t, err)

	pusher.Push(Entry{Level: "warning", Message: "dropped"})
	pusher.Stop()

	assert.Equal(t, []string{"failed to send logs"}, logger.messages)
}
