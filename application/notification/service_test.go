package notification

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"steam-publisher/domain/notification"
	"steam-publisher/domain/publish"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSender records sent messages
type mockSender struct {
	sent     []*notification.Message
	urls     []string
	err      error
	panicked bool
}

func (m *mockSender) Send(ctx context.Context, webhookURL string, msg *notification.Message) error {
	if m.panicked {
		panic("nil embed")
	}
	m.urls = append(m.urls, webhookURL)
	m.sent = append(m.sent, msg)
	return m.err
}

var fixedNow = time.Unix(1700000000, 0)

func newTestService(sender notification.Sender, logs *bytes.Buffer) *Service {
	return NewService(sender,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(zerolog.New(logs)),
	)
}

func windowsResult(exitCode int) publish.InvocationResult {
	return publish.InvocationResult{
		ExitCode:       exitCode,
		Duration:       83*time.Second + 457*time.Millisecond,
		Target:         publish.NewUploadTarget(1541370, 1541373),
		BuildTargetKey: "windows",
	}
}

func TestService_ResultMessageSuccess(t *testing.T) {
	svc := newTestService(&mockSender{}, &bytes.Buffer{})

	msg := svc.ResultMessage(windowsResult(0))

	assert.Equal(t, "Steam Builder", msg.Author)
	assert.Equal(t, TitleSuccess, msg.Title)
	assert.Equal(t, notification.ColorSuccess, msg.Color)
	assert.Equal(t, "https://partner.steamgames.com/apps/builds/1541370", msg.URL)
	assert.Equal(t, []notification.Field{
		{Label: "Build Target", Value: "windows"},
		{Label: "App ID", Value: "1541370"},
		{Label: "Depot ID", Value: "1541373"},
		{Label: "Branch", Value: "default"},
		{Label: "Set Live", Value: "No"},
		{Label: "Duration", Value: "83.46 seconds"},
		{Label: "Date", Value: "<t:1700000000:d>"},
	}, msg.Fields)
}

func TestService_ResultMessageFailure(t *testing.T) {
	svc := newTestService(&mockSender{}, &bytes.Buffer{})

	msg := svc.ResultMessage(windowsResult(1))

	assert.Equal(t, TitleFailure, msg.Title)
	assert.Equal(t, notification.ColorFailure, msg.Color)
	assert.Empty(t, msg.URL)
	code, ok := msg.Field("Exit Code")
	require.True(t, ok)
	assert.Equal(t, "1", code)

	body, err := msg.RenderBody()
	require.NoError(t, err)
	assert.Contains(t, body, "**Exit Code:** 1")
}

func TestService_ResultMessageLaunchFailure(t *testing.T) {
	svc := newTestService(&mockSender{}, &bytes.Buffer{})
	result := windowsResult(-1)
	result.Err = publish.ErrUploadProcessFailure

	msg := svc.ResultMessage(result)
	assert.Equal(t, TitleFailure, msg.Title)
	code, _ := msg.Field("Exit Code")
	assert.Equal(t, "-1", code)
}

func TestService_NotifyResult(t *testing.T) {
	sender := &mockSender{}
	var logs bytes.Buffer
	svc := newTestService(sender, &logs)

	svc.NotifyResult(context.Background(), "https://discord.example/webhook", windowsResult(0))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "https://discord.example/webhook", sender.urls[0])
	assert.Equal(t, TitleSuccess, sender.sent[0].Title)
	assert.Contains(t, logs.String(), "Sent Discord notification.")
}

func TestService_NotifyWithoutWebhook(t *testing.T) {
	sender := &mockSender{}
	var logs bytes.Buffer
	svc := newTestService(sender, &logs)

	svc.NotifyResult(context.Background(), "", windowsResult(0))

	assert.Empty(t, sender.sent)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "Skipping Discord notification")
}

func TestService_NotifySwallowsErrors(t *testing.T) {
	sender := &mockSender{err: errors.New("502 bad gateway")}
	var logs bytes.Buffer
	svc := newTestService(sender, &logs)

	assert.NotPanics(t, func() {
		svc.NotifyResult(context.Background(), "https://discord.example/webhook", windowsResult(3))
	})
	assert.Contains(t, logs.String(), "Failed to send Discord notification")
	assert.Contains(t, logs.String(), "502 bad gateway")
}

func TestService_NotifyRecoversPanic(t *testing.T) {
	var logs bytes.Buffer
	svc := newTestService(&mockSender{panicked: true}, &logs)

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), "https://discord.example/webhook", &notification.Message{Title: "x"})
	})
	assert.Contains(t, logs.String(), "nil embed")
}

func TestWithAuthor(t *testing.T) {
	svc := NewService(&mockSender{}, WithAuthor("Release Bot"), WithAuthor(""))
	assert.Equal(t, "Release Bot", svc.ResultMessage(windowsResult(0)).Author)
}
