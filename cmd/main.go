package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukydev/vehicle-inventory/internal/config"
)

var envFiles []string

// rootCmd is the inventory server entry point
var rootCmd = &cobra.Command{
	Use:           "inventory",
	Short:         "Vehicle inventory API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFiles(envFiles...)
	},
}

// checkEnvCmd reports which settings are missing without starting anything
var checkEnvCmd = &cobra.Command{
	Use:   "check-env",
	Short: "Report missing server and client settings",
	Long: `Check the environment (after loading dotenv files) for the settings
the server and API clients need.

Exits non-zero when a required server setting is missing. A degraded
client configuration is reported but is not an error.`,
	RunE: runCheckEnv,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	rootCmd.AddCommand(serveCmd, checkEnvCmd)
}

func runCheckEnv(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	clientCfg := config.LoadClient()
	if clientCfg.Degraded() {
		fmt.Fprintf(out, "client: degraded, missing %s\n", strings.Join(clientCfg.Missing, ", "))
	} else {
		fmt.Fprintf(out, "client: ok (%s)\n", clientCfg.APIURL)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "server: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "server: ok (database %s, port %s)\n", cfg.Database, cfg.Port)
	if cfg.JWTSecret == config.DefaultJWTSecret {
		fmt.Fprintln(out, "warning: JWT_SECRET is not set, using the development default")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
