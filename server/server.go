// Package server exposes the chat registry over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/jsonrpc"
	"github.com/habiliai/agenteat/tool"
	"github.com/jcooky/go-din"
)

type (
	Server struct {
		registry    *chat.Registry
		toolManager *tool.Manager
		logger      *mylog.Logger
		uiDir       string
		upgrader    websocket.Upgrader
	}

	InitializeRequest struct {
		CrewID string `json:"crew_id,omitempty"`
		ChatID string `json:"chat_id,omitempty"`
	}

	ChatRequest struct {
		Message string `json:"message"`
		CrewID  string `json:"crew_id,omitempty"`
		ChatID  string `json:"chat_id"`
	}

	ErrorResponse struct {
		Status string `json:"status,omitempty"`
		Detail string `json:"detail"`
	}
)

func New(registry *chat.Registry, toolManager *tool.Manager, uiDir string, logger *mylog.Logger) *Server {
	return &Server{
		registry:    registry,
		toolManager: toolManager,
		logger:      logger,
		uiDir:       uiDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler builds the router wrapped with CORS and panic recovery.
func (s *Server) Handler() (http.Handler, error) {
	rpcHandler, err := jsonrpc.NewHandler(s.registry, s.logger)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/initialize", s.handleInitialize).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/crews", s.handleCrews).Methods(http.MethodGet)
	api.HandleFunc("/crews/{crew_id}/tools", s.handleCrewTools).Methods(http.MethodGet)
	api.HandleFunc("/threads/{chat_id}", s.handleThread).Methods(http.MethodGet)
	api.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	router.Handle("/rpc", rpcHandler).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.PathPrefix("/").HandlerFunc(s.handleUI).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Accept", "Origin", "X-Requested-With"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true),
		handlers.RecoveryLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)),
	)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		router.ServeHTTP(w, r.WithContext(ctx))
	})

	return cors(recovery(handler)), nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", mylog.Err(err))
	}
}

// writeError maps err to its HTTP status and a {"detail": ...} body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), mylog.Err(err))
	} else {
		s.logger.InfoContext(r.Context(), "request rejected", slog.String("path", r.URL.Path), slog.String("detail", detail))
	}
	s.writeJSON(w, status, ErrorResponse{Detail: detail})
}

func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errors.ErrInvalidParams), errors.Is(err, errors.ErrNotInitialized):
		return http.StatusBadRequest, errors.DetailOf(err)
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound, errors.DetailOf(err)
	default:
		return http.StatusInternalServerError, "Error processing chat message: " + err.Error()
	}
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// a chunked request may carry no body at all
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.WithDetail(errors.ErrInvalidParams, "Invalid JSON body: %v", err)
	}
	return nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*Server, error) {
		conf := din.MustGetT[*config.Config](c)
		return New(
			din.MustGetT[*chat.Registry](c),
			din.MustGetT[*tool.Manager](c),
			conf.Server.UIDir,
			din.MustGetT[*mylog.Logger](c),
		), nil
	})
}
