// Package telegram delivers reports through the Bot API sendMessage method.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultAPIBase is prefixed directly to the bot token
	DefaultAPIBase = "https://api.telegram.org/bot"

	// ParseModeMarkdown renders the ```json fence as a code block
	ParseModeMarkdown = "Markdown"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Message is one sendMessage request
type Message struct {
	Text                  string `json:"text"`
	ChatID                string `json:"chat_id"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	DisableNotification   bool   `json:"disable_notification"`
}

// AttemptFunc observes every delivery attempt. err is nil when a response was received.
type AttemptFunc func(attempt int, err error)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithAPIBase overrides DefaultAPIBase
func WithAPIBase(apiBase string) ClientOption {
	return func(c *Client) {
		if apiBase != "" {
			c.apiBase = apiBase
		}
	}
}

// WithAttemptFunc registers an observer for delivery attempts
func WithAttemptFunc(fn AttemptFunc) ClientOption {
	return func(c *Client) {
		c.onAttempt = fn
	}
}

// Client sends messages with a bounded number of retries on transport failure
type Client struct {
	apiBase   string
	token     string
	transport Transport
	onAttempt AttemptFunc
}

// NewClient creates a client for the bot identified by token
func NewClient(token string, transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		apiBase:   DefaultAPIBase,
		token:     token,
		transport: transport,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the envelope of every Bot API answer
type apiResponse struct {
	OK          *bool  `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// Endpoint returns the sendMessage URL
func (c *Client) Endpoint() string {
	return fmt.Sprintf("%s%s/sendMessage", c.apiBase, c.token)
}

// Deliver sends msg, making at most retries+1 attempts. Only transport
// failures are retried; every other failure is terminal.
func (c *Client) Deliver(ctx context.Context, msg Message, structured bool, retries int) error {
	headers, body, err := encode(msg, structured)
	if err != nil {
		return err
	}

	if retries < 0 {
		retries = 0
	}
	maxAttempts := retries + 1

	var response *Response
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return newTransportError(ctxErr, attempt-1)
		}

		response, err = c.transport.Post(ctx, c.Endpoint(), headers, body)
		if c.onAttempt != nil {
			c.onAttempt(attempt, err)
		}
		if err == nil {
			break
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			return newTransportError(err, attempt)
		}
	}

	return parseResponse(response)
}

func encode(msg Message, structured bool) (map[string]string, []byte, error) {
	if structured {
		if msg.ParseMode == "" {
			msg.ParseMode = ParseModeMarkdown
		}
		body, err := json.Marshal(msg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode message: %w", err)
		}
		return map[string]string{"Content-Type": contentTypeJSON}, body, nil
	}

	form := url.Values{}
	form.Set("text", msg.Text)
	form.Set("chat_id", msg.ChatID)
	form.Set("disable_web_page_preview", strconv.FormatBool(msg.DisableWebPagePreview))
	form.Set("disable_notification", strconv.FormatBool(msg.DisableNotification))
	return map[string]string{"Content-Type": contentTypeForm}, []byte(form.Encode()), nil
}

func parseResponse(response *Response) error {
	if response == nil {
		return &UnrecognizedResponseError{}
	}

	var result apiResponse
	if err := json.Unmarshal(response.Body, &result); err != nil || result.OK == nil {
		return &UnrecognizedResponseError{Status: response.Status, Body: response.Body}
	}

	if !*result.OK {
		return &RemoteError{Description: result.Description, ErrorCode: result.ErrorCode}
	}

	return nil
}
