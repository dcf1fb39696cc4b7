// Package gateway holds the delivery channels around the orchestration
// core: the HTTP/WebSocket surface clients talk to and the optional
// Telegram notifier. No orchestration logic lives here.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nkapoor/taskflow/internal/event"
	"github.com/nkapoor/taskflow/internal/store"
)

// TaskRunner executes one task in the background. Run never returns an
// error; failures surface on the event stream.
type TaskRunner interface {
	Run(ctx context.Context, taskID, prompt string)
}

// TaskLister serves the task history endpoint.
type TaskLister interface {
	ListTasks(limit int) ([]store.TaskRecord, error)
}

type Server struct {
	runner      TaskRunner
	broadcaster *event.Broadcaster
	tasks       TaskLister
	staticDir   string
	upgrader    websocket.Upgrader
}

func NewServer(runner TaskRunner, b *event.Broadcaster, tasks TaskLister, staticDir string) *Server {
	return &Server{
		runner:      runner,
		broadcaster: b,
		tasks:       tasks,
		staticDir:   staticDir,
		upgrader: websocket.Upgrader{
			// The UI is served from the same origin; anything else
			// is a local dev setup.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("GET /ws/{client}", s.handleWebSocket)
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	return mux
}

type taskRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		http.Error(w, `{"error": "prompt is required"}`, http.StatusBadRequest)
		return
	}

	taskID := uuid.NewString()
	log.Printf("Received task %s: %s", taskID, req.Prompt)

	// The request returns immediately; execution streams over the socket.
	go s.runner.Run(context.Background(), taskID, req.Prompt)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "Task received",
		"task_id": taskID,
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	records, err := s.tasks.ListTasks(50)
	if err != nil {
		http.Error(w, `{"error": "failed to list tasks"}`, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []store.TaskRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	sub := s.broadcaster.Subscribe(64)
	log.Printf("WebSocket client %s connected", r.PathValue("client"))

	go func() {
		for e := range sub.C {
			data, err := event.Marshal(e)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	// Drain until the client goes away; clients only send keepalives.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	sub.Close()
	conn.Close()
	log.Printf("WebSocket client %s disconnected", r.PathValue("client"))
}
