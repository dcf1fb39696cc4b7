package observability

// TaskRecorder is the audit sink TaskAudit forwards to.
type TaskRecorder interface {
	StartTask(id, prompt string) error
	FinishTask(id, status, outcome string) error
}

// TaskAudit wraps a task recorder so every lifecycle transition also lands
// in the structured process log. The log write happens first: a failing
// database write still leaves a trace.
type TaskAudit struct {
	next   TaskRecorder
	logger *Logger
}

func NewTaskAudit(next TaskRecorder, logger *Logger) *TaskAudit {
	return &TaskAudit{next: next, logger: logger}
}

func (a *TaskAudit) StartTask(id, prompt string) error {
	a.logger.LogTask(id, "running", prompt)
	return a.next.StartTask(id, prompt)
}

func (a *TaskAudit) FinishTask(id, status, outcome string) error {
	a.logger.LogTask(id, status, outcome)
	return a.next.FinishTask(id, status, outcome)
}
