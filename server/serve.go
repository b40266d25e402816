package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/errors"
)

// Addr resolves the listen address, probing for a free port when none is
// configured.
func Addr(conf *config.ServerConfig) (string, error) {
	port := conf.Port
	if port == 0 {
		var err error
		port, err = FindAvailablePort(conf.Host, conf.StartPort, conf.PortAttempts)
		if err != nil {
			return "", err
		}
	}
	return net.JoinHostPort(conf.Host, strconv.Itoa(port)), nil
}

// Serve runs the HTTP server until ctx is done and then shuts it down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	server := http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("failed to shutdown server", "err", err)
		}
	}()

	s.logger.Info("starting server", slog.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "failed to listen and serve")
	}

	return nil
}
