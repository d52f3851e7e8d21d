package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarl/bloggen/pkg/pipeline"
)

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(New(nil).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunRequiresPost(t *testing.T) {
	srv := httptest.NewServer(New(nil).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/run")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRunStreamsEvents(t *testing.T) {
	started := make(chan struct{})
	runner := func(onEvent func(pipeline.Event)) []pipeline.Result {
		<-started
		onEvent(pipeline.Event{Connector: "source-github", Stage: "done", Status: "ok"})
		return nil
	}

	srv := httptest.NewServer(New(runner).Routes())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Give the server a moment to register the websocket client before
	// the run starts emitting events.
	time.Sleep(100 * time.Millisecond)
	close(started)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event pipeline.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "source-github", event.Connector)
	assert.Equal(t, "done", event.Stage)
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	block := make(chan struct{})
	runner := func(func(pipeline.Event)) []pipeline.Result {
		<-block
		return nil
	}

	srv := httptest.NewServer(New(runner).Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(block)
}
