package cmd

import (
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/tool"
	"github.com/habiliai/agenteat/tool/mcpserver"
	"github.com/jcooky/go-din"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the food ordering tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			logger := din.MustGetT[*mylog.Logger](c)
			s, err := mcpserver.New(din.MustGetT[*tool.Manager](c), version, logger)
			if err != nil {
				return err
			}

			logger.Info("serving tools over stdio")
			return mcpserver.ServeStdio(s)
		},
	}
}
