// Package orchestrator walks an acquired plan step by step, threading each
// step's textual outcome into the next context-consuming step and publishing
// lifecycle events throughout. Nothing in here returns an error to the
// caller: a failed plan acquisition ends the task with an error log, and a
// failed step becomes an error outcome the plan simply carries forward.
package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/nkapoor/taskflow/internal/capability"
	"github.com/nkapoor/taskflow/internal/event"
	"github.com/nkapoor/taskflow/internal/governance"
	"github.com/nkapoor/taskflow/internal/knowledge"
	"github.com/nkapoor/taskflow/internal/planner"
)

// Acquirer produces the ordered plan for a user prompt.
type Acquirer interface {
	Acquire(ctx context.Context, prompt string) ([]planner.Step, error)
}

// Recorder keeps the task audit trail. Audit failures are logged and
// ignored; they never affect execution.
type Recorder interface {
	StartTask(id, prompt string) error
	FinishTask(id, status, outcome string) error
}

// StepOutcome is the result of one step: the text threaded into the next
// step's context and whether it came from a failure.
type StepOutcome struct {
	Text    string
	IsError bool
}

type Orchestrator struct {
	planner  Acquirer
	registry *capability.Registry
	store    *knowledge.Store
	events   event.Publisher
	audit    Recorder
	policy   governance.PolicyEngine
}

func New(acq Acquirer, reg *capability.Registry, store *knowledge.Store, events event.Publisher, audit Recorder, policy governance.PolicyEngine) *Orchestrator {
	return &Orchestrator{
		planner:  acq,
		registry: reg,
		store:    store,
		events:   events,
		audit:    audit,
		policy:   policy,
	}
}

// Run executes one task to completion. It acquires a plan, runs every step
// in order, and always terminates the event stream with either a planning
// failure log or a final success log.
func (o *Orchestrator) Run(ctx context.Context, taskID, prompt string) {
	o.record(func() error { return o.audit.StartTask(taskID, prompt) })

	o.events.Publish(event.Log{Agent: "PlannerAgent", Message: "Planning task...", Level: event.LevelInfo})

	steps, err := o.planner.Acquire(ctx, prompt)
	if err != nil {
		o.events.Publish(event.Log{Agent: "System", Message: fmt.Sprintf("Planning failed: %v", err), Level: event.LevelError})
		o.record(func() error { return o.audit.FinishTask(taskID, "failed", err.Error()) })
		return
	}

	o.events.Publish(event.Plan{Steps: steps})

	// The previous step's outcome text, threaded into context-consuming
	// steps. Error text threads exactly like success text: a later step is
	// allowed to react to an earlier failure.
	stepContext := ""

	for _, step := range steps {
		name, known := capability.ParseName(step.Agent)

		action := step.Action
		if stepContext != "" && capability.ConsumesContext(name) {
			action = action + ". Info: " + stepContext
		}

		outcome := o.executeStep(ctx, name, known, action)
		stepContext = outcome.Text
	}

	o.events.Publish(event.Log{Agent: "System", Message: "All tasks done!", Level: event.LevelSuccess})
	o.record(func() error { return o.audit.FinishTask(taskID, "completed", stepContext) })
}

func (o *Orchestrator) executeStep(ctx context.Context, name capability.Name, known bool, action string) StepOutcome {
	o.events.Publish(event.StepStatus{Action: action, Status: event.StatusInProgress})

	outcome := o.dispatch(ctx, name, known, action)

	// Post-step hook: every search result is persisted into the knowledge
	// store so later knowledge queries can answer from it.
	if name == capability.Search {
		o.autoSave(action, outcome.Text)
	}

	o.events.Publish(event.StepStatus{Action: action, Status: event.StatusCompleted})

	level := event.LevelInfo
	if outcome.IsError {
		level = event.LevelError
	}
	o.events.Publish(event.Log{Agent: string(name), Message: outcome.Text, Level: level})

	return outcome
}

func (o *Orchestrator) dispatch(ctx context.Context, name capability.Name, known bool, action string) StepOutcome {
	if !known {
		// Unknown identifiers are a deliberate no-op, not a failure: the
		// planner occasionally invents agent names and the plan should
		// survive that.
		return StepOutcome{Text: fmt.Sprintf("Task completed by %s", name)}
	}

	impl := o.registry.Get(name)
	if impl == nil {
		return StepOutcome{Text: fmt.Sprintf("Task completed by %s", name)}
	}

	if o.policy != nil {
		res, err := o.policy.Evaluate(ctx, governance.Request{
			Capability:  name,
			Instruction: action,
		})
		if err != nil {
			return StepOutcome{Text: fmt.Sprintf("Error: policy evaluation failed: %v", err), IsError: true}
		}
		if res.Effect == governance.EffectDeny {
			return StepOutcome{Text: fmt.Sprintf("Blocked by policy: %s", res.Reason), IsError: true}
		}
	}

	text, err := impl.Invoke(ctx, action)
	if err != nil {
		return StepOutcome{Text: fmt.Sprintf("Error: %v", err), IsError: true}
	}
	return StepOutcome{Text: text}
}

func (o *Orchestrator) autoSave(action, result string) {
	name := knowledge.DeriveName(action)
	if _, err := o.store.Put(name, result); err != nil {
		o.events.Publish(event.Log{Agent: string(capability.Knowledge), Message: fmt.Sprintf("Failed to auto-save search results: %v", err), Level: event.LevelError})
		return
	}
	o.events.Publish(event.Log{
		Agent:   string(capability.Knowledge),
		Message: fmt.Sprintf("Auto-saved results for '%s' to knowledge base.", action),
		Level:   event.LevelInfo,
	})
}

func (o *Orchestrator) record(fn func() error) {
	if o.audit == nil {
		return
	}
	if err := fn(); err != nil {
		log.Printf("task audit write failed: %v", err)
	}
}
