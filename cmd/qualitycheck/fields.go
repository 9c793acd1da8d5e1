package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qualitycheck/internal/config"
	"github.com/JonMunkholm/qualitycheck/internal/core"
)

func newFieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Print the effective match configuration",
		Long: `Prints the match settings after environment and --profile are applied,
as a YAML profile that can be saved and passed back with --profile, followed
by the columns each input must provide.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.ProfileFromMatch(a.cfg.Match).Marshal()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, string(data))

			for _, src := range []core.Source{core.SourcePrimary, core.SourceLayer} {
				fmt.Fprintf(out, "\n# %s columns\n", src)
				for _, spec := range core.SourceFields(src, a.cfg.Match) {
					if spec.Required {
						fmt.Fprintf(out, "#   %s (required)\n", spec.Name)
					} else {
						fmt.Fprintf(out, "#   %s\n", spec.Name)
					}
				}
			}
			return nil
		},
	}
}
