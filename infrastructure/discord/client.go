package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"steam-publisher/domain/notification"

	"github.com/bwmarrin/discordgo"
)

// DefaultTimeout bounds a single webhook request
const DefaultTimeout = 10 * time.Second

// HTTPDoer defines the interface for sending HTTP requests
// This allows mocking the transport in tests
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements notification.Sender by executing a Discord webhook
type Client struct {
	http    HTTPDoer
	timeout time.Duration
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing)
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.http = doer
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates a new webhook client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Payload converts a message into Discord webhook parameters
func Payload(msg *notification.Message) (*discordgo.WebhookParams, error) {
	body, err := msg.RenderBody()
	if err != nil {
		return nil, fmt.Errorf("failed to render body: %w", err)
	}

	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: body,
		URL:         msg.URL,
		Color:       int(msg.Color),
	}
	if msg.Author != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: msg.Author}
	}

	return &discordgo.WebhookParams{
		Username: msg.Author,
		Embeds:   []*discordgo.MessageEmbed{embed},
	}, nil
}

// Send posts the message to webhookURL
func (c *Client) Send(ctx context.Context, webhookURL string, msg *notification.Message) error {
	if webhookURL == "" {
		return notification.ErrNoWebhook
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	params, err := Payload(msg)
	if err != nil {
		return err
	}
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", notification.ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", notification.ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", notification.ErrSendFailed, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Ensure Client implements notification.Sender
var _ notification.Sender = (*Client)(nil)
