package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/events"
	"github.com/skillbridge/skillbridge-api/internal/repository"
)

// CompletionService closes out confirmed sessions once they have ended.
type CompletionService struct {
	bookings   repository.BookingRepository
	dispatcher events.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// NewCompletionService constructs the service.
func NewCompletionService(bookings repository.BookingRepository, dispatcher events.Dispatcher, clock Clock, logger *zap.Logger) *CompletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionService{
		bookings:   bookings,
		dispatcher: dispatcher,
		clock:      clockOrSystem(clock),
		logger:     logger,
	}
}

// CompleteElapsed marks every CONFIRMED booking whose end time has passed as
// COMPLETED and returns how many rows changed.
func (s *CompletionService) CompleteElapsed(ctx context.Context) (int64, error) {
	n, err := s.bookings.CompleteElapsed(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n == 0 {
		s.logger.Debug("no elapsed bookings to complete")
		return 0, nil
	}
	s.logger.Info("bookings completed", zap.Int64("count", n))
	publish(ctx, s.dispatcher, s.clock, s.logger, events.Event{
		Type:    events.EventBookingsCompleted,
		Actor:   events.Actor{System: true},
		Payload: events.BookingsCompletedPayload{Count: n},
	})
	return n, nil
}
