package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/skillbridge/skillbridge-api/internal/config"
	"github.com/skillbridge/skillbridge-api/internal/events"
)

func TestNotificationServiceHandlesBookingEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/skillbridge",
	})
	svc.RegisterHandlers()

	ctx := context.Background()
	published := []events.Event{
		{Type: events.EventBookingCreated, BookingID: "b1", Payload: events.BookingCreatedPayload{TutorID: "t1"}},
		{Type: events.EventBookingStatusChanged, BookingID: "b1", Payload: events.BookingStatusChangedPayload{StudentID: "s1"}},
		{Type: events.EventBookingsCompleted, Payload: events.BookingsCompletedPayload{Count: 2}},
		{Type: events.EventReviewCreated, BookingID: "b1", Payload: events.ReviewCreatedPayload{TutorID: "t1", Rating: 5}},
	}
	for _, e := range published {
		if err := dispatcher.Publish(ctx, e); err != nil {
			t.Fatalf("Publish(%s) = %v", e.Type, err)
		}
	}

	for _, msg := range []string{"BookingCreated", "BookingStatusChanged", "BookingsCompleted", "ReviewCreated"} {
		if n := logs.FilterMessage(msg).Len(); n != 1 {
			t.Errorf("%s logged %d times, want 1", msg, n)
		}
	}
	if n := logs.FilterMessage("email notification queued").Len(); n != 3 {
		t.Errorf("emails queued = %d, want 3", n)
	}
	if n := logs.FilterMessage("webhook notification queued").Len(); n != 3 {
		t.Errorf("webhooks queued = %d, want 3", n)
	}
}

func TestNotificationServiceChannelsDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	if err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventBookingCreated,
		Payload: events.BookingCreatedPayload{TutorID: "t1"},
	}); err != nil {
		t.Fatalf("Publish() = %v", err)
	}
	if n := logs.FilterMessage("email notification queued").Len(); n != 0 {
		t.Errorf("emails queued = %d, want 0", n)
	}
	if n := logs.FilterMessage("webhook notification queued").Len(); n != 0 {
		t.Errorf("webhooks queued = %d, want 0", n)
	}
}
