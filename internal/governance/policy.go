package governance

import (
	"context"
	"fmt"
	"regexp"

	"github.com/nkapoor/taskflow/internal/capability"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a plan step to be evaluated before it is
// dispatched to a capability.
type Request struct {
	Capability  capability.Name
	Instruction string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates plan steps against a set of rules. A denied step
// becomes a failed step outcome; the rest of the plan keeps running.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	DeniedCapabilities map[capability.Name]bool
	DeniedRegex        []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedCapabilities: make(map[capability.Name]bool),
		DeniedRegex:        make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyCapability(name capability.Name) {
	e.DeniedCapabilities[name] = true
}

func (e *DefaultPolicyEngine) DenyInstructions(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedCapabilities[req.Capability] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Capability '%s' is restricted by system policy", req.Capability),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Instruction) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Instruction matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
