package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
)

// handleWebSocket answers every chat frame with exactly one reply frame.
// A failed turn is reported in-band and the connection stays open.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", mylog.Err(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	s.logger.DebugContext(ctx, "websocket connected", slog.String("remote", r.RemoteAddr))

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket closed unexpectedly", mylog.Err(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var reply any
		var req ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			reply = ErrorResponse{Status: chat.StatusError, Detail: "Invalid message: " + err.Error()}
		} else if res, err := s.registry.Chat(ctx, req.CrewID, req.ChatID, req.Message); err != nil {
			_, detail := ErrorStatus(err)
			if !errors.Is(err, errors.ErrInvalidParams) && !errors.Is(err, errors.ErrNotInitialized) {
				s.logger.ErrorContext(ctx, "websocket chat failed", mylog.Err(err))
			}
			reply = ErrorResponse{Status: chat.StatusError, Detail: detail}
		} else {
			reply = res
		}

		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("failed to write websocket reply", mylog.Err(err))
			return
		}
	}
}
