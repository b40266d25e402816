package jsonrpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
)

type (
	startTimeCtxKey struct{}
)

func newRPCServer(registry *chat.Registry, logger *mylog.Logger) (*rpc.Server, error) {
	server := rpc.NewServer()
	if err := server.RegisterService(&ChatService{registry: registry}, ChatServiceName); err != nil {
		return nil, errors.Wrapf(err, "failed to register %s service", ChatServiceName)
	}
	if err := server.RegisterService(&CrewsService{registry: registry}, CrewsServiceName); err != nil {
		return nil, errors.Wrapf(err, "failed to register %s service", CrewsServiceName)
	}

	server.RegisterInterceptFunc(func(i *rpc.RequestInfo) *http.Request {
		ctx := context.WithValue(i.Request.Context(), startTimeCtxKey{}, time.Now())
		return i.Request.WithContext(ctx)
	})
	server.RegisterAfterFunc(func(i *rpc.RequestInfo) {
		logger := logger.WithGroup("jsonrpc")
		if startTime, ok := i.Request.Context().Value(startTimeCtxKey{}).(time.Time); ok {
			logger = logger.With(slog.Duration("duration", time.Since(startTime)))
		}
		if i.Error != nil {
			logger = logger.With(mylog.Err(i.Error))
		}
		logger.Info("[JSON-RPC] call",
			slog.Int("statusCode", i.StatusCode),
			slog.String("method", i.Method),
			slog.Bool("error", i.Error != nil),
		)
	})
	server.RegisterCodec(json2.NewCustomCodecWithErrorMapper(
		rpc.DefaultEncoderSelector,
		func(err error) error {
			if err == nil {
				return nil
			}
			return toRPCError(err, logger)
		},
	), "application/json")

	return server, nil
}

type errorResponse struct {
	Version string       `json:"jsonrpc"`
	Error   *json2.Error `json:"error"`
	ID      any          `json:"id"`
}

func toRPCError(err error, logger *mylog.Logger) *json2.Error {
	var rpcErr *json2.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	e := &json2.Error{
		Message: errors.DetailOf(err),
	}
	switch {
	case errors.Is(err, errors.ErrInvalidParams), errors.Is(err, errors.ErrNotInitialized):
		e.Code = json2.E_BAD_PARAMS
	case errors.Is(err, errors.ErrInvalidRequest):
		e.Code = json2.E_INVALID_REQ
	case errors.Is(err, errors.ErrNotFound):
		e.Code = json2.E_SERVER
	default:
		logger.Error("[JSON-RPC] error", mylog.Err(err))
		e.Code = json2.E_INTERNAL
	}
	return e
}

// checkRequest rejects calls the JSON-RPC codec would never see, so they
// still get a JSON-RPC error envelope instead of a plain-text HTTP error.
func checkRequest(r *http.Request) error {
	if r.Method != http.MethodPost {
		return errors.WithDetail(errors.ErrInvalidRequest, "rpc: POST method required, received %s", r.Method)
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return errors.WithDetail(errors.ErrInvalidRequest, "rpc: unsupported Content-Type %q", contentType)
	}
	return nil
}

func writeRPCError(w http.ResponseWriter, status int, e *json2.Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Version: json2.Version, Error: e})
}
