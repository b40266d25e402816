package server

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"
	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/crew"
	"github.com/habiliai/agenteat/session"
	"github.com/invopop/jsonschema"
)

type (
	CrewsResponse struct {
		Status string      `json:"status"`
		Crews  []crew.Info `json:"crews"`
	}

	ToolInfo struct {
		Name        string             `json:"name"`
		Description string             `json:"description"`
		InputSchema *jsonschema.Schema `json:"input_schema"`
	}

	ToolsResponse struct {
		Status string     `json:"status"`
		CrewID string     `json:"crew_id"`
		Tools  []ToolInfo `json:"tools"`
	}

	ThreadResponse struct {
		Status     string            `json:"status"`
		ChatID     string            `json:"chat_id"`
		CrewID     string            `json:"crew_id"`
		OrderState string            `json:"order_state"`
		Messages   []session.Message `json:"messages"`
	}
)

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req InitializeRequest
	if r.Method == http.MethodGet {
		req.CrewID = r.URL.Query().Get("crew_id")
		req.ChatID = r.URL.Query().Get("chat_id")
	} else if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.registry.Initialize(r.Context(), req.CrewID, req.ChatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.registry.Chat(r.Context(), req.CrewID, req.ChatID, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCrews(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, CrewsResponse{
		Status: chat.StatusSuccess,
		Crews:  s.registry.Crews(),
	})
}

// handleCrewTools lists the local tools a crew may call. Tools served by
// external MCP servers are not included.
func (s *Server) handleCrewTools(w http.ResponseWriter, r *http.Request) {
	crewID := mux.Vars(r)["crew_id"]
	def, err := s.registry.Definition(crewID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tools := []ToolInfo{}
	for _, spec := range s.toolManager.Specs() {
		if len(def.Agent.Tools) > 0 && !slices.Contains(def.Agent.Tools, spec.Name) {
			continue
		}
		tools = append(tools, ToolInfo{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema,
		})
	}

	s.writeJSON(w, http.StatusOK, ToolsResponse{
		Status: chat.StatusSuccess,
		CrewID: def.ID,
		Tools:  tools,
	})
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.registry.Thread(r.Context(), mux.Vars(r)["chat_id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	orderState := thread.OrderState
	if orderState == "" {
		orderState = "browsing"
	}
	s.writeJSON(w, http.StatusOK, ThreadResponse{
		Status:     chat.StatusSuccess,
		ChatID:     thread.ID,
		CrewID:     thread.CrewID,
		OrderState: orderState,
		Messages:   thread.Messages,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Warn("failed to write health response", "err", err)
	}
}
