package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClientJoinDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/queue/join", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["user_id"])

		writeJSON(w, http.StatusOK, JoinResult{UserID: "alice", Position: 7})
	}))
	defer srv.Close()

	res, err := New(srv.URL).Join(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, "alice", res.UserID)
	assert.Equal(t, 7, res.Position)
}

func TestClientStatusEscapesUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/queue/status/user%20a", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, StatusInfo{UserID: "user a", Status: StatusWaiting, Position: 3})
	}))
	defer srv.Close()

	info, err := New(srv.URL).Status(context.Background(), "user a")
	assert.NoError(t, err)
	assert.Equal(t, StatusWaiting, info.Status)
	assert.Equal(t, 3, info.Position)
}

func TestClientMapsErrorCodes(t *testing.T) {
	cases := []struct {
		httpStatus int
		code       string
		want       error
	}{
		{http.StatusBadRequest, "ALREADY_QUEUED", ErrAlreadyQueued},
		{http.StatusNotFound, "NOT_FOUND", ErrNotFound},
		{http.StatusBadRequest, "INVALID_STATE", ErrInvalidState},
		{http.StatusTooManyRequests, "QUEUE_FULL", ErrCapacityExceeded},
		{http.StatusInternalServerError, "INTERNAL_ERROR", ErrServiceUnavailable},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.httpStatus, map[string]string{"code": tc.code, "detail": "нет"})
		}))

		_, err := New(srv.URL).Join(context.Background(), "u")
		assert.ErrorIs(t, err, tc.want, "код %s должен давать %v", tc.code, tc.want)
		srv.Close()
	}
}

func TestClientNonJSONErrorIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	err := New(srv.URL).Heartbeat(context.Background(), "u")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestClientTransportFailureIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // порт закрыт, соединение обречено

	_, err := New(srv.URL).Metrics(context.Background())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestClientSignUpSendsSessionToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		assert.Equal(t, "Bearer session-jwt", r.Header.Get("Authorization"))

		var body SignUpRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob@example.com", body.Email)

		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	}))
	defer srv.Close()

	err := New(srv.URL).SignUp(context.Background(), "session-jwt", SignUpRequest{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "secret1",
	})
	assert.NoError(t, err)
}

func TestClientConfirmDecodesSession(t *testing.T) {
	expires := time.Now().Add(20 * time.Minute).UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Session{
			Status:           StatusConnected,
			SessionDuration:  1200,
			SessionExpiresAt: expires,
			Token:            "jwt",
		})
	}))
	defer srv.Close()

	sess, err := New(srv.URL).Confirm(context.Background(), "u")
	assert.NoError(t, err)
	assert.Equal(t, StatusConnected, sess.Status)
	assert.Equal(t, int64(1200), sess.SessionDuration)
	assert.True(t, sess.SessionExpiresAt.Equal(expires))
	assert.Equal(t, "jwt", sess.Token)
}
