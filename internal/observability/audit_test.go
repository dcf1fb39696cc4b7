package observability

import (
	"errors"
	"testing"
)

type fakeRecorder struct {
	starts   []string
	finishes []string
	err      error
}

func (f *fakeRecorder) StartTask(id, prompt string) error {
	f.starts = append(f.starts, id+"|"+prompt)
	return f.err
}

func (f *fakeRecorder) FinishTask(id, status, outcome string) error {
	f.finishes = append(f.finishes, id+"|"+status+"|"+outcome)
	return f.err
}

func TestTaskAuditForwards(t *testing.T) {
	rec := &fakeRecorder{}
	audit := NewTaskAudit(rec, NewLogger())

	if err := audit.StartTask("t1", "find pizza"); err != nil {
		t.Fatalf("StartTask: %v", err)
	}
	if err := audit.FinishTask("t1", "completed", "done"); err != nil {
		t.Fatalf("FinishTask: %v", err)
	}

	if len(rec.starts) != 1 || rec.starts[0] != "t1|find pizza" {
		t.Errorf("starts = %v", rec.starts)
	}
	if len(rec.finishes) != 1 || rec.finishes[0] != "t1|completed|done" {
		t.Errorf("finishes = %v", rec.finishes)
	}
}

func TestTaskAuditPropagatesRecorderError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db closed")}
	audit := NewTaskAudit(rec, NewLogger())

	if err := audit.StartTask("t2", "x"); err == nil {
		t.Error("expected the recorder error back from StartTask")
	}
	if err := audit.FinishTask("t2", "failed", "x"); err == nil {
		t.Error("expected the recorder error back from FinishTask")
	}
}
