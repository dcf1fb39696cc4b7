package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Step is one planned action: which capability runs it and the natural-
// language instruction it receives. Steps are immutable once acquired.
type Step struct {
	Agent  string `json:"agent"`
	Action string `json:"action"`
}

// PlanningError is the only fatal failure in the pipeline: if the plan
// cannot be acquired, no steps run at all.
type PlanningError struct {
	Reason string
	Err    error
}

func (e *PlanningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("planning failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("planning failed: %s", e.Reason)
}

func (e *PlanningError) Unwrap() error { return e.Err }

const promptTemplate = `You are an expert planning agent. Create a JSON plan for: %q
Available Agents & Format:
- "KnowledgeAgent": "What is [question]?" OR "Add knowledge: 'content' in filename"
- "SearchAgent": "Search for [query]"
- "SlackAgent": "Post \"message\" to #channel"
- "CalendarAgent": "Schedule [event name] for [time]"
- "CommunicationAgent": "Send SMS to [number]: [message]"

Sequence Rule:
1. If the user asks a question, use SearchAgent first.
2. If SearchAgent is used, the system will automatically save it to KnowledgeAgent.
3. Use CommunicationAgent or SlackAgent only after info is gathered.

Respond with ONLY a JSON object: {"steps": [{"agent": "...", "action": "..."}]}`

// Acquirer turns a user prompt into an ordered plan via one model call.
// Rate-limited calls are retried on a fixed schedule; every other failure is
// fatal immediately.
type Acquirer struct {
	model          llms.Model
	attempts       int
	retryDelay     time.Duration
	attemptTimeout time.Duration
	sleep          func(time.Duration)
}

func New(model llms.Model) *Acquirer {
	return &Acquirer{
		model:          model,
		attempts:       3,
		retryDelay:     5 * time.Second,
		attemptTimeout: 60 * time.Second,
		sleep:          time.Sleep,
	}
}

// Acquire requests a plan for the user prompt and normalizes the response
// into a non-empty step sequence.
func (a *Acquirer) Acquire(ctx context.Context, userPrompt string) ([]Step, error) {
	content, err := a.request(ctx, fmt.Sprintf(promptTemplate, userPrompt))
	if err != nil {
		return nil, err
	}
	return ParseSteps(content)
}

func (a *Acquirer) request(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	for attempt := 1; ; attempt++ {
		actx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
		resp, err := a.model.GenerateContent(actx, messages,
			llms.WithJSONMode(), llms.WithTemperature(0.1))
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 {
				return "", &PlanningError{Reason: "empty planner response"}
			}
			return resp.Choices[0].Content, nil
		}

		if !isRateLimited(err) {
			return "", &PlanningError{Reason: "planner request failed", Err: err}
		}
		if attempt >= a.attempts {
			return "", &PlanningError{
				Reason: fmt.Sprintf("rate limited after %d attempts", a.attempts),
				Err:    err,
			}
		}
		a.sleep(a.retryDelay)
	}
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

// ParseSteps decodes a planner response into an ordered step list. Accepted
// shapes: a bare step array, an object with a "steps" key, or a single step
// object (coerced to a one-element plan). Parsing an already-normalized step
// array yields the same array, so normalization is idempotent.
func ParseSteps(content string) ([]Step, error) {
	raw := stripFences(content)

	var steps []Step
	if err := json.Unmarshal([]byte(raw), &steps); err == nil {
		return nonEmpty(steps)
	}

	var wrapper struct {
		Steps json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return nil, &PlanningError{Reason: "planner response is not valid JSON", Err: err}
	}
	if wrapper.Steps != nil {
		if err := json.Unmarshal(wrapper.Steps, &steps); err == nil {
			return nonEmpty(steps)
		}
		var single Step
		if err := json.Unmarshal(wrapper.Steps, &single); err == nil {
			return nonEmpty([]Step{single})
		}
		return nil, &PlanningError{Reason: "unrecognized shape under steps key"}
	}

	// No steps key: the object may itself be a lone step.
	var single Step
	if err := json.Unmarshal([]byte(raw), &single); err == nil && single.Agent != "" {
		return nonEmpty([]Step{single})
	}
	return nil, &PlanningError{Reason: "unrecognized plan shape"}
}

func nonEmpty(steps []Step) ([]Step, error) {
	if len(steps) == 0 {
		return nil, &PlanningError{Reason: "plan contains no steps"}
	}
	return steps, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// emit even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
