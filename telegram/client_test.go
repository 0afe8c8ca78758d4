package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postCall struct {
	url     string
	headers map[string]string
	body    []byte
}

// fakeTransport fails the first failures calls, then answers with body
type fakeTransport struct {
	failures int
	err      error
	body     string
	status   int
	calls    []postCall
}

func (f *fakeTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	f.calls = append(f.calls, postCall{url: url, headers: headers, body: body})
	if len(f.calls) <= f.failures {
		err := f.err
		if err == nil {
			err = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		}
		return nil, err
	}
	status := f.status
	if status == 0 {
		status = 200
	}
	return &Response{Status: status, Body: []byte(f.body)}, nil
}

func testMessage() Message {
	return Message{
		Text:                  "app: svc",
		ChatID:                "-1001",
		DisableWebPagePreview: true,
		DisableNotification:   false,
	}
}

func TestDeliverSuccess(t *testing.T) {
	transport := &fakeTransport{body: `{"ok":true,"result":{}}`}
	client := NewClient("123:abc", transport)

	err := client.Deliver(context.Background(), testMessage(), false, 2)
	require.NoError(t, err)
	require.Len(t, transport.calls, 1)
	assert.Equal(t, "https://api.telegram.org/bot123:abc/sendMessage", transport.calls[0].url)
}

func TestDeliverFormEncoding(t *testing.T) {
	transport := &fakeTransport{body: `{"ok":true}`}
	client := NewClient("123:abc", transport)

	require.NoError(t, client.Deliver(context.Background(), testMessage(), false, 0))

	call := transport.calls[0]
	assert.Equal(t, "application/x-www-form-urlencoded", call.headers["Content-Type"])

	form, err := url.ParseQuery(string(call.body))
	require.NoError(t, err)
	assert.Equal(t, "app: svc", form.Get("text"))
	assert.Equal(t, "-1001", form.Get("chat_id"))
	assert.Equal(t, "true", form.Get("disable_web_page_preview"))
	assert.Equal(t, "false", form.Get("disable_notification"))
	_, hasParseMode := form["parse_mode"]
	assert.False(t, hasParseMode)
}

func TestDeliverJSONEncoding(t *testing.T) {
	transport := &fakeTransport{body: `{"ok":true}`}
	client := NewClient("123:abc", transport)

	require.NoError(t, client.Deliver(context.Background(), testMessage(), true, 0))

	call := transport.calls[0]
	assert.Equal(t, "application/json", call.headers["Content-Type"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(call.body, &payload))
	assert.Equal(t, "app: svc", payload["text"])
	assert.Equal(t, "-1001", payload["chat_id"])
	assert.Equal(t, ParseModeMarkdown, payload["parse_mode"])
	assert.Equal(t, true, payload["disable_web_page_preview"])
	assert.Equal(t, false, payload["disable_notification"])
}

func TestDeliverRetries(t *testing.T) {
	tests := []struct {
		name         string
		retries      int
		failures     int
		wantAttempts int
		wantErr      bool
	}{
		{name: "no retries, success", retries: 0, failures: 0, wantAttempts: 1},
		{name: "no retries, failure", retries: 0, failures: 1, wantAttempts: 1, wantErr: true},
		{name: "R failures then success", retries: 3, failures: 3, wantAttempts: 4},
		{name: "R+1 failures", retries: 3, failures: 4, wantAttempts: 4, wantErr: true},
		{name: "single failure", retries: 2, failures: 1, wantAttempts: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{failures: tt.failures, body: `{"ok":true}`}

			var observed []int
			client := NewClient("token", transport, WithAttemptFunc(func(attempt int, err error) {
				observed = append(observed, attempt)
			}))

			err := client.Deliver(context.Background(), testMessage(), false, tt.retries)
			assert.Len(t, transport.calls, tt.wantAttempts)
			assert.Len(t, observed, tt.wantAttempts)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var transportErr *TransportError
			require.True(t, errors.As(err, &transportErr), "got %v", err)
			assert.Equal(t, tt.wantAttempts, transportErr.Attempts)
			assert.Equal(t, CodeConnection, transportErr.Code)
		})
	}
}

func TestDeliverRemoteError(t *testing.T) {
	transport := &fakeTransport{status: 400, body: `{"ok":false,"error_code":400,"description":"bad request"}`}
	client := NewClient("token", transport)

	err := client.Deliver(context.Background(), testMessage(), true, 3)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr), "got %v", err)
	assert.Equal(t, "bad request", remoteErr.Description)
	assert.Equal(t, 400, remoteErr.ErrorCode)
	assert.Len(t, transport.calls, 1, "remote errors are not retried")
}

func TestDeliverUnrecognizedResponse(t *testing.T) {
	for _, body := range []string{"<html>bad gateway</html>", `{"result":{}}`, `[]`, ""} {
		t.Run(body, func(t *testing.T) {
			transport := &fakeTransport{status: 502, body: body}
			client := NewClient("token", transport)

			err := client.Deliver(context.Background(), testMessage(), false, 3)

			var unrecognized *UnrecognizedResponseError
			require.True(t, errors.As(err, &unrecognized), "got %v", err)
			assert.Equal(t, 502, unrecognized.Status)
			assert.Len(t, transport.calls, 1)
		})
	}
}

func TestDeliverCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &fakeTransport{body: `{"ok":true}`}
	err := NewClient("token", transport).Deliver(ctx, testMessage(), false, 3)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, CodeCanceled, transportErr.Code)
	assert.Equal(t, 0, transportErr.Attempts)
	assert.Empty(t, transport.calls)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWithAPIBase(t *testing.T) {
	client := NewClient("42:xyz", &fakeTransport{}, WithAPIBase("http://localhost:8081/bot"))
	assert.Equal(t, "http://localhost:8081/bot42:xyz/sendMessage", client.Endpoint())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want TransportCode
	}{
		{err: context.Canceled, want: CodeCanceled},
		{err: context.DeadlineExceeded, want: CodeTimeout},
		{err: &net.DNSError{Err: "no such host", Name: "api.telegram.org"}, want: CodeDNS},
		{err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: CodeConnection},
		{err: &url.Error{Op: "Post", URL: "x", Err: io.EOF}, want: CodeEOF},
		{err: errors.New("mystery"), want: CodeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.err), tt.err.Error())
	}
}
