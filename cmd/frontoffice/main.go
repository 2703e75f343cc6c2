package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"frontoffice/internal/billing"
	"frontoffice/internal/config"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "frontoffice",
		Short:         "Hotel front-office backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), quoteCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadPolicy reads BRANCHES_FILE when set and falls back to the built-in branches.
func loadPolicy(cfg config.Config) (*billing.PolicyTable, error) {
	if cfg.BranchesFile == "" {
		return billing.MustDefaultPolicyTable(), nil
	}
	branches, err := config.LoadBranches(cfg.BranchesFile)
	if err != nil {
		return nil, err
	}
	return billing.NewPolicyTable(branches)
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
