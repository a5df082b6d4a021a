// Package apitest runs an in-memory todo backend that speaks the same REST
// contract as the real one, for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/idilsaglam/taskflow/internal/model"
)

// Route names used for counters and failure injection.
const (
	RouteList     = "list"
	RouteCreate   = "create"
	RouteUpdate   = "update"
	RouteComplete = "complete"
	RouteDelete   = "delete"
)

// Server is an httptest.Server backed by an ordered slice of todos.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	todos    []model.Todo
	calls    map[string]int
	failures map[string]http.HandlerFunc
	token    string
}

// NewServer starts a server serving the contract under /api.
func NewServer(seed ...model.Todo) *Server {
	s := &Server{
		todos:    append([]model.Todo(nil), seed...),
		calls:    make(map[string]int),
		failures: make(map[string]http.HandlerFunc),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/todos", s.route(RouteList, s.list))
	mux.HandleFunc("POST /api/todos", s.route(RouteCreate, s.create))
	mux.HandleFunc("PUT /api/todos/{id}", s.route(RouteUpdate, s.update))
	mux.HandleFunc("PATCH /api/todos/{id}", s.route(RouteComplete, s.complete))
	mux.HandleFunc("DELETE /api/todos/{id}", s.route(RouteDelete, s.delete))
	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL is the value to hand to api.New.
func (s *Server) BaseURL() string { return s.URL + "/api" }

// RequireToken makes every route answer 401 unless the Bearer token matches.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Fail makes route answer with h until Recover is called.
func (s *Server) Fail(route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = h
}

// FailStatus makes route answer with an error envelope and status code.
func (s *Server) FailStatus(route string, status int) {
	s.Fail(route, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]any{"success": false, "message": "injected failure"})
	})
}

// Recover clears an injected failure.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Calls returns how many requests reached route, failed ones included.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls counts every request the server saw.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Todos returns a copy of the stored list.
func (s *Server) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Todo(nil), s.todos...)
}

func (s *Server) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		fail := s.failures[name]
		token := s.token
		s.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized"})
			return
		}
		if fail != nil {
			fail(w, r)
			return
		}
		h(w, r)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	todos := append([]model.Todo{}, s.todos...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Todos retrieved successfully",
		"data":    todos,
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Cannot parse JSON", "error": err.Error()})
		return
	}
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Body is required"})
		return
	}
	todo := model.Todo{ID: strings.ReplaceAll(uuid.NewString(), "-", ""), Body: req.Body}
	s.mu.Lock()
	s.todos = append(s.todos, todo)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Todo created", "data": todo})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Cannot parse JSON", "error": err.Error()})
		return
	}
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Body is required"})
		return
	}
	s.mutate(w, r.PathValue("id"), "Todo updated", func(t *model.Todo) { t.Body = req.Body })
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r.PathValue("id"), "Todo completed", func(t *model.Todo) { t.Completed = true })
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	idx := s.index(id)
	if idx >= 0 {
		s.todos = append(s.todos[:idx], s.todos[idx+1:]...)
	}
	s.mu.Unlock()
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Todo not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Todo deleted"})
}

func (s *Server) mutate(w http.ResponseWriter, id, message string, fn func(*model.Todo)) {
	s.mu.Lock()
	idx := s.index(id)
	if idx >= 0 {
		fn(&s.todos[idx])
	}
	s.mu.Unlock()
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Todo not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

// index must be called with mu held.
func (s *Server) index(id string) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
