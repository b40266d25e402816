package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/crew"
	"github.com/mokiat/gog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

func newCrewsCmd() *cobra.Command {
	params := &struct {
		Output  string
		CrewDir string
	}{}
	cmd := &cobra.Command{
		Use:     "crews",
		Short:   "List the available crews",
		Aliases: []string{"crew"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := params.CrewDir
			if dir == "" {
				conf, err := config.NewConfig(false)
				if err != nil {
					return err
				}
				dir = conf.Crew.CrewDir
			}

			defs, err := crew.LoadDefinitions(dir)
			if err != nil {
				return err
			}

			infos := gog.Map(defs, func(d *crew.Definition) crew.Info {
				return d.Info()
			})

			out, err := marshalOutput(params.Output, infos)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&params.Output, "output", "o", outputYAML, "Output format: yaml or json")
	cmd.Flags().StringVar(&params.CrewDir, "crew-dir", "", "Directory of additional crew definitions")

	return cmd
}

func marshalOutput(format string, v any) ([]byte, error) {
	switch format {
	case outputYAML:
		return yaml.Marshal(v)
	case outputJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal output")
		}
		return append(out, '\n'), nil
	default:
		return nil, errors.Errorf("unknown output format %q", format)
	}
}
