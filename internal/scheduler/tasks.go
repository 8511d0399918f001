package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskProcessBusiness drains one business's pending lead inbox.
const TaskProcessBusiness = "leads.process_business"

type ProcessBusinessPayload struct {
	Business string `json:"business"`
	RunID    string `json:"runId"`
}

func NewProcessBusinessTask(payload ProcessBusinessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProcessBusiness, data), nil
}

func ParseProcessBusinessPayload(task *asynq.Task) (ProcessBusinessPayload, error) {
	var payload ProcessBusinessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessBusinessPayload{}, err
	}
	return payload, nil
}
