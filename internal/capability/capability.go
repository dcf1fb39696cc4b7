package capability

import (
	"context"
	"fmt"
)

// Name identifies one of the known capabilities. The planner emits these
// identifiers verbatim, so the values match what the planning prompt
// advertises.
type Name string

const (
	Knowledge     Name = "KnowledgeAgent"
	Search        Name = "SearchAgent"
	Slack         Name = "SlackAgent"
	Communication Name = "CommunicationAgent"
	Calendar      Name = "CalendarAgent"
)

// ParseName maps a raw agent identifier from a plan onto a known capability.
// Unknown identifiers are not an error: the executor treats them as a
// deliberate no-op fallback.
func ParseName(s string) (Name, bool) {
	switch Name(s) {
	case Knowledge, Search, Slack, Communication, Calendar:
		return Name(s), true
	}
	return Name(s), false
}

// ConsumesContext reports whether a capability receives the previous step's
// result appended to its instruction. Only the outbound messaging
// capabilities do; everything else works from the instruction alone.
func ConsumesContext(n Name) bool {
	return n == Slack || n == Communication
}

// Capability is the uniform contract every integration implements. Invoke
// interprets a free-text instruction and performs the underlying service
// call. Parse, configuration, and service failures come back as errors; the
// executor converts them to step outcomes and keeps going.
type Capability interface {
	Name() Name
	Invoke(ctx context.Context, instruction string) (string, error)
}

// Registry is the set of constructed capabilities, keyed by identifier.
type Registry struct {
	caps map[Name]Capability
}

func NewRegistry() *Registry {
	return &Registry{caps: make(map[Name]Capability)}
}

func (r *Registry) Register(c Capability) {
	r.caps[c.Name()] = c
}

func (r *Registry) Get(n Name) Capability {
	return r.caps[n]
}

// ParseError reports an instruction that did not match the shape a
// capability expects. It is always a per-step failure, never fatal to the
// plan.
type ParseError struct {
	Capability Name
	Reason     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Capability, e.Reason)
}

// ConfigError reports a capability that cannot operate because required
// configuration is absent. The capability still constructs; it degrades to
// this error at invoke time.
type ConfigError struct {
	Capability Name
	Missing    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Capability, e.Missing)
}
