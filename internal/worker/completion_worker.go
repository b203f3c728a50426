package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/config"
)

const completionRunTimeout = time.Minute

// Completer closes out elapsed bookings.
type Completer interface {
	CompleteElapsed(ctx context.Context) (int64, error)
}

// CompletionWorker runs the booking completion job on a cron schedule.
type CompletionWorker struct {
	cron      *cron.Cron
	completer Completer
	logger    *zap.Logger
}

// NewCompletionWorker registers the job. It returns nil when the job is disabled.
func NewCompletionWorker(cfg config.CompletionConfig, completer Completer, logger *zap.Logger) (*CompletionWorker, error) {
	if !cfg.Enabled || completer == nil {
		return nil, nil
	}
	w := &CompletionWorker{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		completer: completer,
		logger:    logger,
	}
	if _, err := w.cron.AddFunc(cfg.Schedule, w.RunOnce); err != nil {
		return nil, err
	}
	return w, nil
}

// RunOnce executes a single completion pass.
func (w *CompletionWorker) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), completionRunTimeout)
	defer cancel()

	n, err := w.completer.CompleteElapsed(ctx)
	if err != nil {
		w.logger.Error("booking completion failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("booking completion run", zap.Int64("completed", n))
	}
}

// Start begins the schedule in its own goroutine.
func (w *CompletionWorker) Start() {
	if w == nil {
		return
	}
	w.cron.Start()
	w.logger.Info("booking completion worker started")
}

// Stop halts the schedule and waits for a running job to finish.
func (w *CompletionWorker) Stop() {
	if w == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.logger.Info("booking completion worker stopped")
}
