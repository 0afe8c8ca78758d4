package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyTransportPost(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		gotBody        []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	client := NewClient("123:abc", NewRestyTransport(5*time.Second), WithAPIBase(server.URL+"/bot"))
	err := client.Deliver(context.Background(), testMessage(), true, 0)
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Contains(t, string(gotBody), `"chat_id":"-1001"`)
}

func TestRestyTransportRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := NewClient("token", NewRestyTransport(0), WithAPIBase(server.URL+"/bot"))
	err := client.Deliver(context.Background(), testMessage(), false, 2)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr), "got %v", err)
	assert.Equal(t, "Bad Request: chat not found", remoteErr.Description)
}

func TestRestyTransportTimeoutIsRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			time.Sleep(200 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient("token", NewRestyTransport(50*time.Millisecond), WithAPIBase(server.URL+"/bot"))
	err := client.Deliver(context.Background(), testMessage(), false, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRestyTransportConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := NewClient("token", NewRestyTransport(time.Second), WithAPIBase(endpoint+"/bot"))
	err := client.Deliver(context.Background(), testMessage(), false, 2)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %v", err)
	assert.Equal(t, 3, transportErr.Attempts)
	assert.Equal(t, CodeConnection, transportErr.Code)
}
