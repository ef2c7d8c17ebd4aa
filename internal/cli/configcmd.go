package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/usgeom/internal/config"
)

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after merging defaults, the config file,
USGEOM_* environment variables and flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return render(cmd.OutOrStdout(), a.cfg.Output.Format, a.cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "init [file]",
		Short:       "Write the default configuration to a file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "List the directories searched for usgeom.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range config.SearchPaths() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}
			if used := a.loader.ConfigFileUsed(); used != "" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "using: %s\n", used)
				return err
			}
			return nil
		},
	})
	return cmd
}
