package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "agenteat",
		Short:        "Agent Eat food ordering assistant",
		Version:      version,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newCrewsCmd(),
		newToolsCmd(),
		newMCPCmd(),
	)

	return cmd
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "panic: %+v\n", err)
		os.Exit(1)
	}
}
