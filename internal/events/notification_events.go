package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	EventTestResult         EventType = "test-result"
	EventCorrectionFinished EventType = "correction.finished"
)

const (
	eventSource  = "correction-service"
	eventVersion = "1.0"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// TestResultData is what the result email template renders.
type TestResultData struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Score     int    `json:"score"` // percentage
	TestName  string `json:"testName"`
	TestLink  string `json:"testLink"`
}

// EmailEvent is consumed by the mailer: one templated email to one recipient.
type EmailEvent struct {
	Template string         `json:"template"`
	To       string         `json:"to"`
	From     string         `json:"from"`
	Data     TestResultData `json:"data"`
}

func NewTestResultEvent(template, to, from string, data TestResultData, resultID uint) *NotificationEvent {
	return &NotificationEvent{
		ID:        generateEventID(),
		Type:      EventTestResult,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data: EmailEvent{
			Template: template,
			To:       to,
			From:     from,
			Data:     data,
		},
		Metadata: map[string]interface{}{
			"result_id": resultID,
		},
	}
}

func generateEventID() string {
	return uuid.NewString()
}
