// cmd/formsctl/main.go
//
// formsctl – operator CLI for a formrelay deployment.
//
//	formsctl migrate                        create tables for the configured driver
//	formsctl list contact  -n 20 -o yaml    print recent submissions
//	formsctl version
//
// Configuration is read exactly as cmd/web reads it (conf/global.yaml,
// FORMRELAY_ env overrides, vault: secrets).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/formrelay/internal/api"
	"github.com/yanizio/formrelay/internal/config"
	"github.com/yanizio/formrelay/internal/store"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "formsctl",
		Short:         "formsctl – manage a formrelay store",
		Version:       api.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "log config and store activity to stderr")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			l, _ := zap.NewDevelopment()
			zap.ReplaceGlobals(l)
		}
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore loads config and connects to the configured backend.
func openStore(ctx context.Context) (store.Backend, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	be, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return be, cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the submission tables if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			be, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer be.Close()

			if err := be.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", be.Driver())
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the formrelay version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "formrelay %s\n", api.Version)
		},
	}
}
