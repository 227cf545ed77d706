package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// SlackNotifier posts new-consultation messages to a Slack incoming webhook.
// An empty webhook URL disables it; delivery failures are never fatal to the
// intake flow. A circuit breaker keeps a dead webhook from slowing requests.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewSlackNotifier constructs a notifier for the given webhook URL.
func NewSlackNotifier(webhookURL string, logger *zap.Logger) *SlackNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        "slack-webhook",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *SlackNotifier) Enabled() bool {
	return s.webhookURL != ""
}

type slackMessage struct {
	Text string `json:"text"`
}

// NotifyNewConsultation posts a short message about a stored consultation.
func (s *SlackNotifier) NotifyNewConsultation(ctx context.Context, consultationNumber, consultationType, contactName string) error {
	if !s.Enabled() {
		return nil
	}

	text := fmt.Sprintf("New %s consultation %s from %s", consultationType, consultationNumber, contactName)
	payload, err := json.Marshal(slackMessage{Text: text})
	if err != nil {
		return fmt.Errorf("notification.slack.encode: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := s.client.Do(request)
		if err != nil {
			return nil, err
		}
		defer response.Body.Close()
		if response.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("slack webhook returned %d", response.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		s.logger.Warn("slack notification failed",
			zap.String("consultation_number", consultationNumber),
			zap.Error(err))
		return fmt.Errorf("notification.slack.post: %w", err)
	}
	return nil
}
