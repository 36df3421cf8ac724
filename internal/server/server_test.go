package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrbsprite/cell/internal/config"
)

const pageFile = `
title: Preview
body:
  - {$type: h1, $text: hello}
`

func writePage(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func serveConfig(hotReload bool) config.Serve {
	cfg := config.Default().Serve
	cfg.HotReload = hotReload
	cfg.Debounce = 20 * time.Millisecond
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	s := New(writePage(t, pageFile), serveConfig(true))

	rec := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, s.Reload())
	rec = get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<h1>hello</h1>")
	assert.Contains(t, rec.Body.String(), `new EventSource("/_cell/events")`)
	assert.Equal(t, 1, s.Version())
}

func TestIndexWithoutHotReload(t *testing.T) {
	s := New(writePage(t, pageFile), serveConfig(false))
	require.NoError(t, s.Reload())

	rec := get(t, s.Handler(), "/")
	assert.NotContains(t, rec.Body.String(), "EventSource")
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), EventsPath).Code)
}

func TestIndexPageOptOut(t *testing.T) {
	s := New(writePage(t, "options: {hot_reload: false}\n"+pageFile), serveConfig(true))
	require.NoError(t, s.Reload())
	assert.NotContains(t, get(t, s.Handler(), "/").Body.String(), "EventSource")
}

func TestReloadError(t *testing.T) {
	path := writePage(t, pageFile)
	s := New(path, serveConfig(true))
	require.NoError(t, s.Reload())

	require.NoError(t, os.WriteFile(path, []byte("body: [p]\n"), 0o644))
	assert.Error(t, s.Reload())
	rec := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid body")

	require.NoError(t, os.WriteFile(path, []byte(pageFile), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/").Code)
	assert.Equal(t, 3, s.Version())
}

func TestHealthAndMetrics(t *testing.T) {
	s := New(writePage(t, pageFile), serveConfig(true))
	require.NoError(t, s.Reload())

	rec := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cell_nucleus_flushes_total 1")
	assert.Contains(t, rec.Body.String(), "cell_nucleus_updates_total 0")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestEventStream(t *testing.T) {
	s := New(writePage(t, pageFile), serveConfig(true))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+EventsPath, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, "event: ping\ndata: connected\n\n", readEvent(t, r))
	require.Equal(t, 1, s.Events().Clients())

	s.Events().Send("reload", "index.yaml\nchanged", "7")
	assert.Equal(t, "event: reload\ndata: index.yaml\ndata: changed\nid: 7\n\n", readEvent(t, r))

	cancel()
	assert.Eventually(t, func() bool { return s.Events().Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// readEvent reads up to and including the blank line ending an event.
func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		b.WriteString(line)
		if line == "\n" {
			return b.String()
		}
	}
}

func TestSendWithoutClients(t *testing.T) {
	e := NewEvents(zerolog.Nop())
	assert.NotPanics(t, func() { e.Send("reload", "", "") })
	assert.Equal(t, 0, e.Clients())
}

func TestWatchFile(t *testing.T) {
	path := writePage(t, pageFile)
	other := filepath.Join(filepath.Dir(path), "other.yaml")

	events := make(chan fsnotify.Event, 4)
	w, err := watchFile(path, 150*time.Millisecond, zerolog.Nop(), func(event fsnotify.Event) {
		events <- event
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(pageFile), 0o644))
	}

	select {
	case event := <-events:
		assert.Equal(t, filepath.Base(path), filepath.Base(event.Name))
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case event := <-events:
		t.Fatalf("unexpected second event %s", event)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestRunShutsDown(t *testing.T) {
	cfg := serveConfig(true)
	cfg.Addr = "127.0.0.1:0"
	s := New(writePage(t, pageFile), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- s.Run(ctx)
	}()
	assert.Eventually(t, func() bool { return s.Version() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestMessageString(t *testing.T) {
	assert.Equal(t, "data: \n\n", message{}.String())
	assert.Equal(t, "event: x\ndata: y\n\n", message{event: "x", data: "y"}.String())
}
