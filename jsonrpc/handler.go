package jsonrpc

import (
	"context"
	"net/http"

	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/internal/mylog"
)

// NewHandler serves the Chat and Crews services over JSON-RPC 2.0.
func NewHandler(registry *chat.Registry, logger *mylog.Logger) (http.Handler, error) {
	rpcServer, err := newRPCServer(registry, logger)
	if err != nil {
		return nil, err
	}

	return newRecoveryHandler(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := checkRequest(r); err != nil {
				writeRPCError(w, http.StatusBadRequest, toRPCError(err, logger))
				return
			}

			ctx, cancel := context.WithCancel(r.Context())
			defer cancel()

			rpcServer.ServeHTTP(w, r.WithContext(ctx))
		}),
	), nil
}
