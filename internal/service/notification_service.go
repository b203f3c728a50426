package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/config"
	"github.com/skillbridge/skillbridge-api/internal/events"
)

// NotificationService turns booking and review events into participant notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
	n.dispatcher.Subscribe(events.EventBookingStatusChanged, n.handleBookingStatusChanged)
	n.dispatcher.Subscribe(events.EventBookingsCompleted, n.handleBookingsCompleted)
	n.dispatcher.Subscribe(events.EventReviewCreated, n.handleReviewCreated)
}

func (n *NotificationService) handleBookingCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingCreated", zap.String("booking_id", event.BookingID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.BookingCreatedPayload); ok {
		n.sendEmail(ctx, event, payload.TutorID)
	}
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleBookingStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingStatusChanged", zap.String("booking_id", event.BookingID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.BookingStatusChangedPayload); ok {
		n.sendEmail(ctx, event, payload.StudentID)
	}
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleBookingsCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingsCompleted", zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleReviewCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ReviewCreated", zap.String("booking_id", event.BookingID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.ReviewCreatedPayload); ok {
		n.sendEmail(ctx, event, payload.TutorID)
	}
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event, recipientID string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification queued",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient_id", recipientID),
		zap.String("booking_id", event.BookingID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification queued",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("booking_id", event.BookingID),
		zap.String("event_type", string(event.Type)))
}
