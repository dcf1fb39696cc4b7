// Package event defines the lifecycle events the orchestrator publishes and
// a fan-out broadcaster that delivers them to subscribers without ever
// blocking the publisher.
package event

import (
	"encoding/json"

	"github.com/nkapoor/taskflow/internal/planner"
)

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Event is one of Plan, StepStatus, or Log. Kind returns the wire tag
// clients switch on.
type Event interface {
	Kind() string
}

// Plan announces the full acquired plan before any step runs.
type Plan struct {
	Steps []planner.Step `json:"steps"`
}

func (Plan) Kind() string { return "plan" }

// StepStatus marks a step entering or leaving execution.
type StepStatus struct {
	Action string `json:"step_action"`
	Status Status `json:"status"`
}

func (StepStatus) Kind() string { return "status_update" }

// Log carries free-form progress text attributed to an agent.
type Log struct {
	Agent   string `json:"agent"`
	Message string `json:"message"`
	Level   Level  `json:"log_type"`
}

func (Log) Kind() string { return "log" }

// Marshal renders an event in the client wire shape: the event's own fields
// plus a "type" tag.
func Marshal(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	m["type"] = e.Kind()
	return json.Marshal(m)
}

// Publisher is the executor-facing side of the event stream.
type Publisher interface {
	Publish(e Event)
}
