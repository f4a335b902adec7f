package main

import (
	"os"

	"github.com/spf13/cobra"

	"mirra/internal/interfaces/cli/migrate"
	"mirra/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mirra",
		Short: "Mirra - Jira to Notion ticket mirroring",
		Long:  `Mirra keeps a Notion workspace in sync with Jira: it polls for new and updated tickets and mirrors them into per-project Notion databases.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
