package domain

import "encoding/json"

// Job is a single execution of a task.
type Job struct {
	ID              string `json:"id"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UserID          string `json:"userId"`
	TaskID          string `json:"taskId"`
	IsRunning       *bool  `json:"isRunning,omitempty"`
	Passed          *bool  `json:"passed,omitempty"`
	TotalSimulators *int   `json:"totalSimulators,omitempty"`
}

// Node is a worker process participating in a job.
type Node struct {
	ID                         string `json:"id"`
	CreatedAt                  string `json:"createdAt,omitempty"`
	JobID                      string `json:"jobId"`
	Name                       string `json:"name"`
	Running                    *bool  `json:"running,omitempty"`
	TotalSuccessfulConnections *int   `json:"totalSuccessfulConnections,omitempty"`
	TotalFailedConnections     *int   `json:"totalFailedConnections,omitempty"`
	TotalDroppedConnections    *int   `json:"totalDroppedConnections,omitempty"`
}

// JobEvent is published when a job is created so workers can start the load
// test. Job and Task are forwarded exactly as the backends returned them,
// except that Task's scripts field holds the decoded array.
type JobEvent struct {
	TaskID string                     `json:"taskId"`
	Job    json.RawMessage            `json:"job"`
	Task   map[string]json.RawMessage `json:"task"`
}
