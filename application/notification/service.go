package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"steam-publisher/domain/notification"
	"steam-publisher/domain/publish"

	"github.com/rs/zerolog"
)

// DefaultAuthor is the name notifications are posted under
const DefaultAuthor = "Steam Builder"

// BuildsURLPrefix is the Steamworks build management page, suffixed with the app id
const BuildsURLPrefix = "https://partner.steamgames.com/apps/builds/"

// Titles for upload outcomes
const (
	TitleSuccess = "Build uploaded to steam!"
	TitleFailure = "Build failed to upload!"
)

// Service formats upload outcomes and delivers them to a chat webhook.
// Delivery problems are logged and never returned.
type Service struct {
	sender notification.Sender
	author string
	now    func() time.Time
	log    zerolog.Logger
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithAuthor sets the author shown on notifications
func WithAuthor(author string) ServiceOption {
	return func(s *Service) {
		if author != "" {
			s.author = author
		}
	}
}

// WithClock sets the time source for the Date field (for testing)
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates a new notification service
func NewService(sender notification.Sender, opts ...ServiceOption) *Service {
	s := &Service{
		sender: sender,
		author: DefaultAuthor,
		now:    time.Now,
		log:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// BuildsURL returns the Steamworks builds page for an app
func BuildsURL(appID int) string {
	return BuildsURLPrefix + strconv.Itoa(appID)
}

// ResultMessage formats an upload result as a chat message. Successful
// uploads link to the app's builds page; failures carry the exit code.
func (s *Service) ResultMessage(result publish.InvocationResult) *notification.Message {
	target := result.Target
	fields := []notification.Field{
		{Label: "Build Target", Value: result.BuildTargetKey},
		{Label: "App ID", Value: strconv.Itoa(target.AppID)},
		{Label: "Depot ID", Value: strconv.Itoa(target.DepotID)},
		{Label: "Branch", Value: target.Branch},
		{Label: "Set Live", Value: notification.YesNo(target.SetLive)},
	}

	msg := &notification.Message{Author: s.author}
	if result.Succeeded() {
		msg.Title = TitleSuccess
		msg.Color = notification.ColorSuccess
		msg.URL = BuildsURL(target.AppID)
	} else {
		msg.Title = TitleFailure
		msg.Color = notification.ColorFailure
		fields = append(fields, notification.Field{Label: "Exit Code", Value: strconv.Itoa(result.ExitCode)})
	}

	fields = append(fields,
		notification.Field{Label: "Duration", Value: fmt.Sprintf("%.2f seconds", result.DurationSeconds())},
		notification.Field{Label: "Date", Value: notification.DiscordTimestamp(s.now())},
	)
	msg.Fields = fields

	return msg
}

// NotifyResult reports an upload result to webhookURL
func (s *Service) NotifyResult(ctx context.Context, webhookURL string, result publish.InvocationResult) {
	msg := s.ResultMessage(result)
	if body, err := msg.RenderBody(); err == nil {
		if result.Succeeded() {
			s.log.Info().Msg(body)
		} else {
			s.log.Error().Msg(body)
		}
	}
	s.Notify(ctx, webhookURL, msg)
}

// Notify delivers msg to webhookURL. A missing URL is a logged no-op.
func (s *Service) Notify(ctx context.Context, webhookURL string, msg *notification.Message) {
	if webhookURL == "" {
		s.log.Warn().Msg("Discord webhook URL is not set. Skipping Discord notification.")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Failed to send Discord notification")
		}
	}()

	if err := s.sender.Send(ctx, webhookURL, msg); err != nil {
		s.log.Error().Err(err).Msg("Failed to send Discord notification")
		return
	}
	s.log.Info().Msg("Sent Discord notification.")
}

// Ensure Service implements publish.ResultNotifier
var _ publish.ResultNotifier = (*Service)(nil)
