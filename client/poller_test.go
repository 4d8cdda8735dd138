package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeQueueMux builds the endpoints every poller test needs; the status
// handler is the scripted part.
func fakeQueueMux(status http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/queue/join", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		id := body["user_id"]
		if id == "" {
			id = "srv-1"
		}
		writeJSON(w, http.StatusOK, JoinResult{UserID: id, Position: 1})
	})
	mux.HandleFunc("/queue/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("/queue/timers/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, TimerInfo{TimerType: "poll", TTL: 2})
	})
	mux.HandleFunc("/queue/status/", status)
	return mux
}

func TestPollerDraftToConnected(t *testing.T) {
	expires := time.Now().Add(20 * time.Minute).UTC()

	mux := fakeQueueMux(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/queue/status/srv-1", r.URL.Path)
		exp := time.Now().Add(5 * time.Minute)
		writeJSON(w, http.StatusOK, StatusInfo{UserID: "srv-1", Status: StatusDraft, DraftExpiresAt: &exp})
	})
	mux.HandleFunc("/queue/confirm", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Session{
			Status:           StatusConnected,
			SessionDuration:  1200,
			SessionExpiresAt: expires,
			Token:            "tok",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var drafts, connects int
	p := NewPoller(New(srv.URL), "")
	p.OnDraft = func(s StatusInfo) {
		drafts++
		assert.Equal(t, StatusDraft, s.Status)
	}
	p.OnConnected = func(s Session) {
		connects++
		assert.Equal(t, "tok", s.Token)
	}

	sess, err := p.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, int64(1200), sess.SessionDuration)

	// Пустой userID: сервер выдал идентификатор, поллер его запомнил.
	assert.Equal(t, "srv-1", p.UserID())
	assert.Equal(t, 1, drafts)
	assert.Equal(t, 1, connects)
}

func TestPollerEvicted(t *testing.T) {
	mux := fakeQueueMux(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "NOT_FOUND", "detail": "нет в очереди"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var evictions int
	p := NewPoller(New(srv.URL), "ghost")
	p.OnEvicted = func(err error) {
		evictions++
		assert.ErrorIs(t, err, ErrNotFound)
	}

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, evictions)
}

func TestPollerToleratesAlreadyQueuedJoin(t *testing.T) {
	expires := time.Now().Add(20 * time.Minute).UTC()

	mux := http.NewServeMux()
	mux.HandleFunc("/queue/join", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "ALREADY_QUEUED", "detail": "уже в очереди"})
	})
	mux.HandleFunc("/queue/status/", func(w http.ResponseWriter, r *http.Request) {
		// Повторный запуск продолжает вести существующую запись.
		assert.Equal(t, "/queue/status/bob", r.URL.Path)
		exp := time.Now().Add(5 * time.Minute)
		writeJSON(w, http.StatusOK, StatusInfo{UserID: "bob", Status: StatusDraft, DraftExpiresAt: &exp})
	})
	mux.HandleFunc("/queue/confirm", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Session{Status: StatusConnected, SessionDuration: 1200, SessionExpiresAt: expires, Token: "tok"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess, err := NewPoller(New(srv.URL), "bob").Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
}

func TestPollerResumesConnectedEntry(t *testing.T) {
	expires := time.Now().Add(10 * time.Minute).UTC()

	mux := fakeQueueMux(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusInfo{UserID: "bob", Status: StatusConnected, SessionExpiresAt: &expires})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess, err := NewPoller(New(srv.URL), "bob").Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StatusConnected, sess.Status)

	// Токен восстановить нельзя, дедлайн — можно.
	assert.Empty(t, sess.Token)
	assert.True(t, sess.SessionExpiresAt.Equal(expires))
	assert.InDelta(t, 600, sess.SessionDuration, 5)
}

func TestPollerRetriesServiceUnavailable(t *testing.T) {
	expires := time.Now().Add(20 * time.Minute).UTC()

	var statusCalls int32
	mux := fakeQueueMux(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&statusCalls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("down"))
			return
		}
		exp := time.Now().Add(5 * time.Minute)
		writeJSON(w, http.StatusOK, StatusInfo{UserID: "bob", Status: StatusDraft, DraftExpiresAt: &exp})
	})
	mux.HandleFunc("/queue/confirm", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Session{Status: StatusConnected, SessionDuration: 1200, SessionExpiresAt: expires, Token: "tok"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	start := time.Now()
	sess, err := NewPoller(New(srv.URL), "bob").Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&statusCalls), int32(2))

	// Между повторами выдерживается нижняя граница опроса.
	assert.GreaterOrEqual(t, time.Since(start), pollFloor)
}

func TestPollerHeartbeatLoop(t *testing.T) {
	var heartbeats int32

	mux := http.NewServeMux()
	mux.HandleFunc("/queue/join", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, JoinResult{UserID: "bob", Position: 5})
	})
	mux.HandleFunc("/queue/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&heartbeats, 1)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("/queue/timers/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, TimerInfo{TimerType: "poll", TTL: 5})
	})
	mux.HandleFunc("/queue/status/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusInfo{UserID: "bob", Status: StatusWaiting, Position: 5})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	p := NewPoller(New(srv.URL), "bob")
	p.HeartbeatInterval = 20 * time.Millisecond

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Пока поллер спит до следующего опроса, heartbeat-цикл продолжает тикать.
	assert.GreaterOrEqual(t, atomic.LoadInt32(&heartbeats), int32(3))
}
