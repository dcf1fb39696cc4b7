package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/nkapoor/taskflow/internal/event"
)

// EventType defines the category of the log entry.
type EventType string

const (
	EventTypeTask      EventType = "task"
	EventTypeStream    EventType = "stream"
	EventTypeHeartbeat EventType = "heartbeat"
)

// Entry is a structured log record.
type Entry struct {
	Type      EventType `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger emits structured JSON to stdout and mirrors orchestration events
// into a size-rotated jsonl file.
type Logger struct {
	streamLogPath string
	maxSize       int64
}

func NewLogger() *Logger {
	return &Logger{
		streamLogPath: filepath.Join("logs", "events.jsonl"),
		maxSize:       10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON entry to stdout.
func (l *Logger) Log(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal log entry: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if e.Type == EventTypeStream {
		l.writeToFile(data)
	}
}

// Mirror drains a broadcast subscription into the structured log, so every
// event a client could see is also on disk. Runs until the subscription
// closes.
func (l *Logger) Mirror(sub *event.Subscription) {
	for e := range sub.C {
		l.Log(Entry{
			Type: EventTypeStream,
			Data: map[string]any{"kind": e.Kind(), "event": e},
		})
	}
}

func (l *Logger) LogTask(taskID, state, detail string) {
	l.Log(Entry{
		Type:   EventTypeTask,
		TaskID: taskID,
		Data:   map[string]string{"state": state, "detail": detail},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Entry{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.streamLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.streamLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.streamLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.streamLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.streamLogPath, oldPath)
}
