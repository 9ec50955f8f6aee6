package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type botServer struct {
	mu       sync.Mutex
	sent     []map[string]string
	failures int32 // sendMessage calls to reject before succeeding
	updates  string
}

func (b *botServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if atomic.AddInt32(&b.failures, -1) >= 0 {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"ok":false,"description":"Too Many Requests"}`))
				return
			}
			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
				return
			}
			b.mu.Lock()
			b.sent = append(b.sent, payload)
			b.mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			body := b.updates
			if r.URL.Query().Get("offset") != "0" {
				body = `{"ok":true,"result":[]}`
			}
			w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (b *botServer) messages() []map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]string(nil), b.sent...)
}

func TestSend(t *testing.T) {
	bot := &botServer{}
	srv := httptest.NewServer(bot.handler(t))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "", srv.URL)
	require.NoError(t, n.Send(context.Background(), "<b>hello</b>"))

	msgs := bot.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0]["chat_id"])
	assert.Equal(t, "<b>hello</b>", msgs[0]["text"])
	assert.Equal(t, "HTML", msgs[0]["parse_mode"])
}

func TestSend_APIError(t *testing.T) {
	bot := &botServer{failures: 1}
	srv := httptest.NewServer(bot.handler(t))
	defer srv.Close()

	err := NewTelegramNotifier("TOKEN", "42", "", srv.URL).Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "Too Many Requests")
}

func TestSendWithBackoff(t *testing.T) {
	bot := &botServer{failures: 2}
	srv := httptest.NewServer(bot.handler(t))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "", srv.URL)
	require.NoError(t, n.sendWithBackoff(context.Background(), "digest", 3, time.Millisecond))
	assert.Len(t, bot.messages(), 1)

	atomic.StoreInt32(&bot.failures, 10)
	err := n.sendWithBackoff(context.Background(), "digest", 1, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 attempts failed")
}

func TestSendWithBackoff_Cancelled(t *testing.T) {
	bot := &botServer{failures: 10}
	srv := httptest.NewServer(bot.handler(t))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewTelegramNotifier("TOKEN", "42", "", srv.URL).sendWithBackoff(ctx, "digest", 5, time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolling_AnswersCommands(t *testing.T) {
	bot := &botServer{updates: `{"ok":true,"result":[
		{"update_id":7,"message":{"text":" /status "}},
		{"update_id":8,"message":{"text":""}},
		{"update_id":9}
	]}`}
	srv := httptest.NewServer(bot.handler(t))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "", srv.URL)
	updates, err := n.getUpdates(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, updates, 3)

	var got []string
	offset := n.dispatch(context.Background(), updates, 0, func(cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})

	assert.Equal(t, 10, offset)
	assert.Equal(t, []string{"/status"}, got)
	msgs := bot.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "reply to /status", msgs[0]["text"])
}

func TestStartPolling_StopsOnCancel(t *testing.T) {
	bot := &botServer{updates: `{"ok":true,"result":[]}`}
	srv := httptest.NewServer(bot.handler(t))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewTelegramNotifier("TOKEN", "42", "", srv.URL).StartPolling(ctx, func(string) string { return "" })
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}
}
