package hibp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachwatch/monitor/internal/utils"
)

func newTestClient(t *testing.T, root string) *Client {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c, err := NewClient(&ClientConfig{
		KAnonAPIRoot:  root,
		KAnonAPIToken: "kanon-token",
		UserAgent:     "breach-monitor-test",
		Timeout:       time.Second,
	}, logger)
	require.NoError(t, err)
	return c
}

func TestSubscribeHash_PostsPrefix(t *testing.T) {
	var got subscribeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/range/subscribe", r.URL.Path)
		assert.Equal(t, "kanon-token", r.URL.Query().Get("code"))
		assert.Equal(t, "breach-monitor-test", r.UserAgent())
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL+"/").SubscribeHash(context.Background(), utils.SHA1("test@test.com"))
	require.NoError(t, err)
	assert.Equal(t, "A6AD00", got.HashPrefix)
}

func TestSubscribeHash_NonSuccessIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).SubscribeHash(context.Background(), utils.SHA1("test@test.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad code")
}

func TestSubscribeHash_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newTestClient(t, srv.URL).SubscribeHash(ctx, utils.SHA1("test@test.com"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_RequiresRoot(t *testing.T) {
	_, err := NewClient(&ClientConfig{}, logrus.New())
	assert.Error(t, err)
}

func TestNewClient_NilLoggerUsesStandardLogger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(&ClientConfig{KAnonAPIRoot: srv.URL, Timeout: time.Second}, nil)
	require.NoError(t, err)
	assert.Same(t, logrus.StandardLogger(), c.logger)

	assert.NotPanics(t, func() {
		err = c.SubscribeHash(context.Background(), utils.SHA1("test@test.com"))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
