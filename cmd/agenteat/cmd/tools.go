package cmd

import (
	"fmt"
	"log/slog"

	"github.com/habiliai/agenteat/tool"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	params := &struct {
		Output string
	}{}
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog with input schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := tool.NewManager(nil, tool.NewOrders(), slog.Default())

			out, err := marshalOutput(params.Output, manager.Specs())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&params.Output, "output", "o", outputJSON, "Output format: yaml or json")

	return cmd
}
