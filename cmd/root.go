package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/cliniva/cliniva_backend/cmd/http"
	systemcmd "github.com/cliniva/cliniva_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "cliniva",
	Short: "Cliniva multi-tenant clinic management backend.",
	Long: `Cliniva is a multi-tenant clinic management backend. Each tenant is a
doctor account with its own receptionists, sub-doctors, patients, time slots
and appointments, served from one unified deployment.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
