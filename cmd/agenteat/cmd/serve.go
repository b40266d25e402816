package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/server"
	"github.com/jcooky/go-din"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	params := &struct {
		Port   int
		UIDir  string
		CrewID string
	}{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API and web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			c := din.NewContainer(ctx, din.EnvProd)
			defer c.Close()

			conf := din.MustGetT[*config.Config](c)
			if cmd.Flags().Changed("port") {
				conf.Server.Port = params.Port
			}
			if params.UIDir != "" {
				conf.Server.UIDir = params.UIDir
			}
			if err := conf.Validate(); err != nil {
				return err
			}

			logger := din.MustGetT[*mylog.Logger](c)
			registry := din.MustGetT[*chat.Registry](c)

			if err := registry.Preload(ctx, params.CrewID); err != nil {
				return errors.Wrapf(err, "failed to preload crew")
			}

			addr, err := server.Addr(&conf.Server)
			if err != nil {
				return err
			}

			logger.Info("server started", "addr", addr)
			defer logger.Info("server stopped")

			return din.MustGetT[*server.Server](c).Serve(ctx, addr)
		},
	}

	cmd.Flags().IntVarP(&params.Port, "port", "p", 0, "Port to listen on, 0 picks the first free port from START_PORT")
	cmd.Flags().StringVar(&params.UIDir, "ui-dir", "", "Directory of the built web UI")
	cmd.Flags().StringVar(&params.CrewID, "crew", "", "Crew to activate at startup")

	return cmd
}
