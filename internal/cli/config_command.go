package cli

import (
	"github.com/spf13/cobra"
)

func (r *RootCommand) newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration after defaults, the config file, WORKLOG_*
environment variables and flags have been applied. The output can be
saved and passed back with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.config.WriteYAML(cmd.OutOrStdout())
		},
	}

	configCmd.AddCommand(showCmd)
	return configCmd
}
