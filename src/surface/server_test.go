package surface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenshots/src/display"
	"screenshots/src/messages"
	"screenshots/src/overlay"
)

type recorder struct {
	mu     sync.Mutex
	ready  int
	events []messages.Message
}

func (r *recorder) OnReady() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready++
}

func (r *recorder) OnMessage(msg messages.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, msg)
}

func (r *recorder) snapshot() (int, []messages.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready, append([]messages.Message(nil), r.events...)
}

func startServer(t *testing.T, staticDir string) (*Server, *recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{}
	s := NewServer(staticDir, rec)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, rec, ts
}

func dial(t *testing.T, s *Server, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/surface"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, s.Connected, time.Second, 5*time.Millisecond)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg messages.Message) {
	t.Helper()
	data, err := messages.Encode(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func receive(t *testing.T, conn *websocket.Conn) messages.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := messages.Decode(data)
	require.NoError(t, err)
	return msg
}

func TestHealth(t *testing.T) {
	_, _, ts := startServer(t, "")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["connected"])
}

func TestSendWithoutSurface(t *testing.T) {
	s, _, _ := startServer(t, "")
	assert.ErrorIs(t, s.Send(messages.Reset{}), ErrNotConnected)
	assert.ErrorIs(t, s.Window().Show(), ErrNotConnected)
}

func TestInboundMessagesReachHandler(t *testing.T) {
	s, rec, ts := startServer(t, "")
	conn := dial(t, s, ts)

	send(t, conn, messages.Ready{})
	send(t, conn, messages.OK{Buffer: []byte{1, 2, 3}, Data: messages.SelectionData{
		Bounds: &messages.Bounds{Width: 10, Height: 20},
	}})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))
	send(t, conn, messages.Cancel{})

	require.Eventually(t, func() bool {
		_, events := rec.snapshot()
		return len(events) == 2
	}, time.Second, 5*time.Millisecond)

	ready, events := rec.snapshot()
	assert.Equal(t, 1, ready)
	ok, isOK := events[0].(messages.OK)
	require.True(t, isOK)
	assert.Equal(t, []byte{1, 2, 3}, ok.Buffer)
	assert.Equal(t, 20.0, ok.Data.Bounds.Height)
	assert.Equal(t, messages.TypeCancel, events[1].Type())
}

func TestSendDeliversEnvelope(t *testing.T) {
	s, _, ts := startServer(t, "")
	conn := dial(t, s, ts)

	d := display.Display{ID: 2, Width: 100, Height: 50, ScaleFactor: 1}
	require.NoError(t, s.Send(messages.Capture{Display: d, Image: "data:image/png;base64,AA=="}))

	got, ok := receive(t, conn).(messages.Capture)
	require.True(t, ok)
	assert.Equal(t, d, got.Display)
}

func TestRemoteWindowCommands(t *testing.T) {
	s, _, ts := startServer(t, "")
	conn := dial(t, s, ts)
	win := s.Window()

	require.NoError(t, win.SetBounds(messages.Rect{X: 1, Y: 2, Width: 3, Height: 4}))
	require.NoError(t, win.SetAlwaysOnTop(true, overlay.LevelScreenSaver))
	require.NoError(t, win.Blur())

	cmd := receive(t, conn).(messages.WindowCommand)
	assert.Equal(t, messages.OpSetBounds, cmd.Op)
	require.NotNil(t, cmd.Bounds)
	assert.Equal(t, messages.Rect{X: 1, Y: 2, Width: 3, Height: 4}, *cmd.Bounds)

	cmd = receive(t, conn).(messages.WindowCommand)
	assert.Equal(t, messages.OpSetAlwaysOnTop, cmd.Op)
	assert.True(t, cmd.Flag)
	assert.Equal(t, "screen-saver", cmd.Level)

	cmd = receive(t, conn).(messages.WindowCommand)
	assert.Equal(t, messages.OpBlur, cmd.Op)
}

func TestPromptSavePath(t *testing.T) {
	tests := []struct {
		name     string
		reply    func(id string) messages.SaveDialogResult
		wantPath string
		wantOK   bool
	}{
		{"chosen", func(id string) messages.SaveDialogResult {
			return messages.SaveDialogResult{ID: id, FilePath: "/tmp/a.png"}
		}, "/tmp/a.png", true},
		{"cancelled", func(id string) messages.SaveDialogResult {
			return messages.SaveDialogResult{ID: id, Canceled: true}
		}, "", false},
		{"empty path", func(id string) messages.SaveDialogResult {
			return messages.SaveDialogResult{ID: id}
		}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, ts := startServer(t, "")
			conn := dial(t, s, ts)

			go func() {
				_ = conn.SetReadDeadline(time.Now().Add(time.Second))
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				msg, err := messages.Decode(data)
				if err != nil {
					return
				}
				req := msg.(messages.SaveDialog)
				out, _ := messages.Encode(tt.reply(req.ID))
				_ = conn.WriteMessage(websocket.TextMessage, out)
			}()

			path, ok, err := s.PromptSavePath(context.Background(), "20240102030405006.png")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestPromptSavePathDisconnectCancels(t *testing.T) {
	s, _, ts := startServer(t, "")
	conn := dial(t, s, ts)

	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, _, _ = conn.ReadMessage()
		conn.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, ok, err := s.PromptSavePath(ctx, "x.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromptSavePathReconnectCancels(t *testing.T) {
	s, _, ts := startServer(t, "")
	first := dial(t, s, ts)

	type answer struct {
		ok  bool
		err error
	}
	done := make(chan answer, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, ok, err := s.PromptSavePath(ctx, "x.png")
		done <- answer{ok, err}
	}()

	assert.Equal(t, messages.TypeSaveDialog, receive(t, first).Type())

	dial(t, s, ts)

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.False(t, got.ok)
	case <-time.After(2 * time.Second):
		t.Fatal("prompt still waiting after the surface was replaced")
	}
}

func TestPromptSavePathSurvivesOtherConnection(t *testing.T) {
	s, _, ts := startServer(t, "")
	first := dial(t, s, ts)
	second := dial(t, s, ts)

	// the replaced connection going away must not cancel prompts on the new one
	_ = first.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := first.ReadMessage()
	require.Error(t, err)

	type answer struct {
		path string
		ok   bool
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		path, ok, err := s.PromptSavePath(ctx, "x.png")
		done <- answer{path, ok, err}
	}()

	req, isReq := receive(t, second).(messages.SaveDialog)
	require.True(t, isReq)
	send(t, second, messages.SaveDialogResult{ID: req.ID, FilePath: "/tmp/a.png"})

	got := <-done
	require.NoError(t, got.err)
	assert.True(t, got.ok)
	assert.Equal(t, "/tmp/a.png", got.path)
}

func TestPromptSavePathWithoutSurface(t *testing.T) {
	s, _, _ := startServer(t, "")
	_, ok, err := s.PromptSavePath(context.Background(), "x.png")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, ok)
}

func TestReconnectReplacesConnection(t *testing.T) {
	s, rec, ts := startServer(t, "")
	first := dial(t, s, ts)
	second := dial(t, s, ts)

	// the server closes the old connection once the new one is installed
	_ = first.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := first.ReadMessage()
	require.Error(t, err)

	send(t, second, messages.Ready{})
	require.NoError(t, s.Send(messages.Reset{}))
	assert.Equal(t, messages.TypeReset, receive(t, second).Type())

	require.Eventually(t, func() bool {
		ready, _ := rec.snapshot()
		return ready == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.Connected())
}

func TestStaticAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>surface</html>"), 0o644))
	_, _, ts := startServer(t, dir)

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
