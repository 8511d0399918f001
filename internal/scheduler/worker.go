package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Worker consumes processing tasks and runs the lead processor against
// the named business.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor *leads.Processor
	biz       *bizconfig.Reader
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor *leads.Processor, biz *bizconfig.Reader, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		// Lead records are single-writer per business; one worker at a
		// time keeps runs from racing each other.
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		processor: processor,
		biz:       biz,
		log:       log,
	}

	mux.HandleFunc(TaskProcessBusiness, w.handleProcessBusiness)

	return w, nil
}

func (w *Worker) handleProcessBusiness(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseProcessBusinessPayload(task)
	if err != nil {
		return err
	}

	log := w.log.WithBusiness(payload.Business)

	biz, err := w.biz.LoadBusiness(payload.Business)
	if err != nil {
		return fmt.Errorf("load business config %s: %w", payload.Business, err)
	}
	if !biz.IsConfigured() {
		log.Warn("business config not filled in, skipping run")
		return nil
	}

	summary, err := w.processor.ProcessBusiness(ctx, biz)
	if err != nil {
		return err
	}

	log.Info("processing run finished",
		"run_id", payload.RunID,
		"processed", summary.Processed,
		"messages", summary.Messages,
		"hot_leads", summary.HotLeads,
		"archived", summary.Archived,
		"deferred", summary.Deferred,
		"failures", summary.Failures,
	)
	return nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
