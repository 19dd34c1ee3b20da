package services

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/SAP-F-2025/correction-service/internal/events"
	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/SAP-F-2025/correction-service/internal/notifier"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
)

const sideChannelTimeout = 5 * time.Second

// NotificationEventService emits the messages that follow a correction. Nothing it does
// can fail a correction: every error is logged and swallowed.
type NotificationEventService interface {
	NotifyTestResult(ctx context.Context, result *models.Result, test *models.Test, percentage int) bool
	SendCorrectionSummary(ctx context.Context, summary notifier.Summary)
}

type NotificationConfig struct {
	From               string
	Template           string
	TestInvitationLink string
}

type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	sideChannel    notifier.Notifier
	config         NotificationConfig
	logger         *slog.Logger
}

func NewNotificationEventService(
	repo repositories.Repository,
	eventPublisher events.EventPublisher,
	sideChannel notifier.Notifier,
	config NotificationConfig,
	logger *slog.Logger,
) NotificationEventService {
	if sideChannel == nil {
		sideChannel = notifier.NoopNotifier{}
	}
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		sideChannel:    sideChannel,
		config:         config,
		logger:         logger,
	}
}

// NotifyTestResult publishes the result email event and reports whether it was handed
// to the gateway.
func (s *notificationEventService) NotifyTestResult(ctx context.Context, result *models.Result, test *models.Test, percentage int) bool {
	contact, err := s.repo.Candidate().GetContact(ctx, nil, result.CandidateID)
	if err != nil {
		s.logger.Warn("Candidate contact not resolvable, skipping result email",
			"result_id", result.ID,
			"candidate_id", result.CandidateID,
			"error", err)
		return false
	}
	if strings.TrimSpace(contact.Email) == "" {
		s.logger.Warn("Candidate has no email, skipping result email",
			"result_id", result.ID,
			"candidate_id", result.CandidateID)
		return false
	}

	s.logger.Info("Publishing test result event", "result_id", result.ID, "score", percentage)

	event := events.NewTestResultEvent(s.config.Template, contact.Email, s.config.From, events.TestResultData{
		Firstname: contact.Firstname,
		Lastname:  contact.Lastname,
		Score:     percentage,
		TestName:  test.Title,
		TestLink:  BuildTestLink(s.config.TestInvitationLink, contact.Email),
	}, result.ID)

	if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish test result event",
			"result_id", result.ID,
			"error", err)
		return false
	}
	return true
}

func (s *notificationEventService) SendCorrectionSummary(ctx context.Context, summary notifier.Summary) {
	ctx, cancel := context.WithTimeout(ctx, sideChannelTimeout)
	defer cancel()

	if err := s.sideChannel.SendCorrectionSummary(ctx, summary); err != nil {
		s.logger.Warn("Failed to send correction summary",
			"result_id", summary.ResultID,
			"error", err)
	}
}

// BuildTestLink appends the candidate email to the invitation base. A base without a
// query string gets "?email=" first; a base with one is expected to end with the
// email parameter already.
func BuildTestLink(base, email string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	if !strings.Contains(base, "?") {
		base += "?email="
	}
	return base + url.QueryEscape(email)
}
