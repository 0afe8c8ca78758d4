package telegram

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is what a Transport returns when the endpoint answered
type Response struct {
	Status int
	Body   []byte
}

// Transport performs a single POST. An error means no response was received.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error)
}

// RestyTransport is the production Transport
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a transport with an optional per-attempt timeout.
// A zero timeout leaves requests unbounded.
func NewRestyTransport(timeout time.Duration) *RestyTransport {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return NewRestyTransportWithClient(client)
}

// NewRestyTransportWithClient wraps an existing resty client. Retries are
// handled by Client, so the resty client should not retry on its own.
func NewRestyTransportWithClient(client *resty.Client) *RestyTransport {
	return &RestyTransport{client: client}
}

func (t *RestyTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	response, err := t.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status: response.StatusCode(),
		Body:   response.Body(),
	}, nil
}
