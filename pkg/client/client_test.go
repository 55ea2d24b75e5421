package client

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battnotify/battnotify/pkg/events"
)

// serveUnix serves h on a unix socket in a fresh temp dir.
func serveUnix(t *testing.T, h http.Handler) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "bn")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "s.sock")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)

	srv := &http.Server{Handler: h, ReadHeaderTimeout: time.Second}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return sock
}

func TestClient_GetStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"upperLimit":85,"state":"armed","pendingHighLimit":87,"lastSample":{"charging":true,"percent":87,"state":"charging"}}`))
	})
	mux.HandleFunc("/limit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("85"))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"v1.2.3"`))
	})

	c := NewClient(serveUnix(t, mux))
	ctx := context.Background()

	status, err := c.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 85, status.UpperLimit)
	assert.Equal(t, "armed", status.State)
	require.NotNil(t, status.LastSample)
	assert.Equal(t, 87, status.LastSample.Percent)

	limit, err := c.GetLimit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 85, limit)

	v, err := c.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", v)
}

func TestClient_NotFound(t *testing.T) {
	c := NewClient(serveUnix(t, http.NewServeMux()))
	_, err := c.GetStatus(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_DaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.GetStatus(context.Background())
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestClient_EmptySocketPath(t *testing.T) {
	c := NewClient("")

	_, err := c.GetStatus(context.Background())
	assert.ErrorIs(t, err, ErrDaemonNotRunning)

	_, err = c.SubscribeEvents(context.Background())
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestClient_SubscribeEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event:monitor.notified\ndata:{\"message\":\"unplug\",\"percent\":91}\n\n"))
		_, _ = w.Write([]byte("event:monitor.transition\ndata:{\"from\":\"idle\",\"to\":\"armed\"}\n\n"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := NewClient(serveUnix(t, mux)).SubscribeEvents(ctx)
	require.NoError(t, err)

	var got []events.Event
	for ev := range ch {
		got = append(got, ev)
	}

	require.Len(t, got, 2)
	assert.Equal(t, events.MonitorNotified, got[0].Name)
	notified, err := events.DecodeAs[events.NotifiedEvent](got[0])
	require.NoError(t, err)
	assert.Equal(t, "unplug", notified.Message)
	assert.Equal(t, events.MonitorTransition, got[1].Name)
}
