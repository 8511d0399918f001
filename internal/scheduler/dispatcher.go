package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/platform/logger"
)

const defaultProcessInterval = 15 * time.Minute

// Dispatcher periodically enqueues a processing task for every
// configured business.
type Dispatcher struct {
	client   *Client
	biz      *bizconfig.Reader
	interval time.Duration
	log      *logger.Logger
}

func NewDispatcher(client *Client, biz *bizconfig.Reader, interval time.Duration, log *logger.Logger) *Dispatcher {
	if interval <= 0 {
		interval = defaultProcessInterval
	}
	return &Dispatcher{
		client:   client,
		biz:      biz,
		interval: interval,
		log:      log,
	}
}

// Run dispatches one round immediately, then on every tick until the
// context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	d.dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context) {
	businesses, err := d.biz.ListBusinesses()
	if err != nil {
		d.log.Error("could not list businesses for dispatch", "error", err)
		return
	}

	runID := uuid.NewString()
	for _, business := range businesses {
		err := d.client.EnqueueProcessBusiness(ctx, ProcessBusinessPayload{
			Business: business,
			RunID:    runID,
		})
		if err != nil {
			d.log.Error("could not enqueue processing task",
				"business", business,
				"error", err,
			)
		}
	}

	d.log.Info("dispatched processing round", "run_id", runID, "businesses", len(businesses))
}
