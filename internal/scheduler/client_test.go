package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string               { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool         { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string         { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int          { return 1 }
func (c testSchedulerConfig) GetProcessInterval() time.Duration { return time.Minute }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Error("expected error for empty redis url")
	}
}

func TestEnqueueProcessBusiness(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + srv.Addr(), queue: "leads"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.EnqueueProcessBusiness(context.Background(), ProcessBusinessPayload{
		Business: "phoenix-roofing",
		RunID:    "run-1",
	})
	if err != nil {
		t.Fatalf("EnqueueProcessBusiness: %v", err)
	}

	// asynq stores pending task ids in the queue's pending list.
	if !srv.Exists("asynq:{leads}:pending") {
		t.Error("expected a pending task in the leads queue")
	}
}

func TestScheduleProcessBusiness(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + srv.Addr(), queue: "leads"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	runAt := time.Now().Add(time.Hour)
	err = client.ScheduleProcessBusiness(context.Background(), ProcessBusinessPayload{
		Business: "phoenix-roofing",
		RunID:    "run-2",
	}, runAt)
	if err != nil {
		t.Fatalf("ScheduleProcessBusiness: %v", err)
	}

	if !srv.Exists("asynq:{leads}:scheduled") {
		t.Error("expected a scheduled task in the leads queue")
	}
}

func TestTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewProcessBusinessTask(ProcessBusinessPayload{Business: "b", RunID: "r"})
	if err != nil {
		t.Fatalf("NewProcessBusinessTask: %v", err)
	}
	if task.Type() != TaskProcessBusiness {
		t.Errorf("task type = %q", task.Type())
	}

	payload, err := ParseProcessBusinessPayload(task)
	if err != nil {
		t.Fatalf("ParseProcessBusinessPayload: %v", err)
	}
	if payload.Business != "b" || payload.RunID != "r" {
		t.Errorf("payload = %+v", payload)
	}
}
