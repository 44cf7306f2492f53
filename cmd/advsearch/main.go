package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/advsearch/internal/config"
	"github.com/kailas-cloud/advsearch/internal/version"
)

// ProgramName is injected at build time.
var ProgramName = "advsearch"

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing.
func Execute(programName string, args []string) error {
	var env string

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Advanced search aggregator",
		Long:          "Federated full-text search over wiki pages and tickets across pluggable search backends",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), env)
		},
	}
	rootCmd.SetVersionTemplate(`{{.Version}}
`)
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(),
		"configuration environment, selects config/<env>.yaml")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), env)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), programName, version.String())
		},
	})

	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
