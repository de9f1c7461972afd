// Package server exposes simulation sessions over HTTP. Each session is
// one engine instance; clients create a session from a scenario, send it
// commands, advance ticks, and read state back as JSON.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"kubesim/commands"
	"kubesim/engine"
	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/redis"
	"kubesim/scenario"
)

type APIServer struct {
	router *mux.Router
	addr   string
	mirror *redis.Mirror

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	ID       string `json:"id"`
	Scenario string `json:"scenario"`
	engine   *engine.Engine
}

func NewAPIServer(addr string, mirror *redis.Mirror) *APIServer {
	s := &APIServer{
		router:   mux.NewRouter(),
		addr:     addr,
		mirror:   mirror,
		sessions: map[string]*session{},
	}
	s.setupRoutes()
	return s
}

func (s *APIServer) Start() error {
	logging.Info("Server", "API server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (s *APIServer) setupRoutes() {
	s.router.HandleFunc("/api/v1/scenarios", s.handleListScenarios).Methods("GET")

	s.router.HandleFunc("/api/v1/sessions", s.handleCreateSession).Methods("POST")
	s.router.HandleFunc("/api/v1/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	s.router.HandleFunc("/api/v1/sessions/{id}/state", s.handleGetState).Methods("GET")
	s.router.HandleFunc("/api/v1/sessions/{id}/pods", s.handleListPods).Methods("GET")
	s.router.HandleFunc("/api/v1/sessions/{id}/nodes", s.handleListNodes).Methods("GET")
	s.router.HandleFunc("/api/v1/sessions/{id}/deployments", s.handleListDeployments).Methods("GET")
	s.router.HandleFunc("/api/v1/sessions/{id}/jobs", s.handleListJobs).Methods("GET")
	s.router.HandleFunc("/api/v1/sessions/{id}/events", s.handleListEvents).Methods("GET")
	s.router.HandleFunc("/api/v1/sessions/{id}/goals", s.handleListGoals).Methods("GET")
	s.router.HandleFunc("/api/v1/sessions/{id}/commands", s.handleCommand).Methods("POST")
	s.router.HandleFunc("/api/v1/sessions/{id}/tick", s.handleTick).Methods("POST")
}

func (s *APIServer) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Goals       int    `json:"goals"`
	}
	var out []entry
	for name, sc := range scenario.Builtin() {
		out = append(out, entry{Name: name, Description: sc.Description, Goals: len(sc.Goals)})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *APIServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Scenario == "" {
		req.Scenario = "sandbox"
	}
	sc, ok := scenario.Builtin()[req.Scenario]
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown scenario %q", req.Scenario))
		return
	}

	sess := &session{
		ID:       uuid.NewString(),
		Scenario: sc.Name,
		engine:   engine.New(sc),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	logging.Info("Server", "session %s created for scenario %s", sess.ID, sc.Name)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":          sess.ID,
		"scenario":    sc.Name,
		"description": sc.Description,
		"goals":       sess.engine.Goals(),
	})
}

func (s *APIServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

// withSession resolves the session in the URL and runs fn under the
// server lock; the engine itself is not safe for concurrent use.
func (s *APIServer) withSession(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	fn(sess)
}

func (s *APIServer) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		respondJSON(w, http.StatusOK, sess.engine.State())
	})
}

func (s *APIServer) handleListPods(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		namespace := r.URL.Query().Get("namespace")
		// gets are recorded too; goals can require the learner to look
		sess.engine.ApplyCommand(commands.Command{Kind: commands.KindGetPods})
		respondJSON(w, http.StatusOK, sess.engine.State().ListPods(namespace))
	})
}

func (s *APIServer) handleListNodes(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		sess.engine.ApplyCommand(commands.Command{Kind: commands.KindGetNodes})
		respondJSON(w, http.StatusOK, sess.engine.State().ListNodes())
	})
}

func (s *APIServer) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		namespace := r.URL.Query().Get("namespace")
		sess.engine.ApplyCommand(commands.Command{Kind: commands.KindGetDeployments})
		respondJSON(w, http.StatusOK, sess.engine.State().ListDeployments(namespace))
	})
}

func (s *APIServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		namespace := r.URL.Query().Get("namespace")
		sess.engine.ApplyCommand(commands.Command{Kind: commands.KindGetJobs})
		respondJSON(w, http.StatusOK, sess.engine.State().ListJobs(namespace))
	})
}

func (s *APIServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		sess.engine.ApplyCommand(commands.Command{Kind: commands.KindGetEvents})
		respondJSON(w, http.StatusOK, sess.engine.State().Events)
	})
}

func (s *APIServer) handleListGoals(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"goals": sess.engine.Goals(),
			"done":  sess.engine.Done(),
		})
	})
}

func (s *APIServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd commands.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if cmd.Kind == "" {
		respondError(w, http.StatusBadRequest, "command kind is required")
		return
	}
	s.withSession(w, r, func(sess *session) {
		events := sess.engine.ApplyCommand(cmd)
		s.mirror.Publish(r.Context(), sess.ID, events)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"tick":   sess.engine.State().Tick,
			"events": events,
			"done":   sess.engine.Done(),
		})
	})
}

func (s *APIServer) handleTick(w http.ResponseWriter, r *http.Request) {
	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &count); err != nil || count < 1 || count > 1000 {
			respondError(w, http.StatusBadRequest, "count must be an integer between 1 and 1000")
			return
		}
	}
	s.withSession(w, r, func(sess *session) {
		var events []models.Event
		for i := 0; i < count; i++ {
			events = append(events, sess.engine.Tick()...)
		}
		s.mirror.Publish(r.Context(), sess.ID, events)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"tick":   sess.engine.State().Tick,
			"events": events,
			"goals":  sess.engine.Goals(),
			"done":   sess.engine.Done(),
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
