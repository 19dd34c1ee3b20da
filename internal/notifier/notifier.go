package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Summary is the short report posted to the team chat after a correction.
type Summary struct {
	ResultID      uint
	TestName      string
	CandidateName string
	Score         float64
	MaxScore      float64
	Percentage    int
	Skipped       int
	Degraded      int
}

// Notifier is a best-effort side channel. Errors are for logging only.
type Notifier interface {
	SendCorrectionSummary(ctx context.Context, s Summary) error
}

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    messageSender
	chatID int64
	logger *slog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, logger), nil
}

func newTelegramNotifier(bot messageSender, chatID int64, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

func (n *TelegramNotifier) SendCorrectionSummary(ctx context.Context, s Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatSummary(s))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Debug("Correction summary sent", "result_id", s.ResultID, "chat_id", n.chatID)
	return nil
}

// FormatSummary renders a plain-text summary.
func FormatSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Correction finished: %s\n", s.TestName)
	if s.CandidateName != "" {
		fmt.Fprintf(&b, "Candidate: %s\n", s.CandidateName)
	}
	fmt.Fprintf(&b, "Score: %g/%g (%d%%)\n", s.Score, s.MaxScore, s.Percentage)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped answers: %d\n", s.Skipped)
	}
	if s.Degraded > 0 {
		fmt.Fprintf(&b, "Answers not scored by AI: %d\n", s.Degraded)
	}
	fmt.Fprintf(&b, "Result #%d", s.ResultID)
	return b.String()
}

// NoopNotifier is used when no chat is configured.
type NoopNotifier struct{}

func (NoopNotifier) SendCorrectionSummary(context.Context, Summary) error { return nil }
