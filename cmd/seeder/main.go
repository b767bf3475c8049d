package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/vehicle-inventory/internal/client"
	"github.com/ukydev/vehicle-inventory/internal/config"
	"github.com/ukydev/vehicle-inventory/internal/seed"
	"github.com/ukydev/vehicle-inventory/internal/validation"
)

var (
	fixturesPath string
	envFiles     []string
)

// seederCmd loads fixtures and writes them through the API
var seederCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed dropdown settings and vehicles through the inventory API",
	Long: `Log in as SEED_USERNAME / SEED_PASSWORD (an admin account, since
dropdown settings are admin-only) and create every fixture from --file, or
from the built-in fixtures when no file is given.

Requires INVENTORY_API_URL and BACKEND_ANON_KEY.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(envFiles...); err != nil {
			return err
		}
		return run(cmd.Context(), config.LoadClient(), os.Getenv("SEED_USERNAME"), os.Getenv("SEED_PASSWORD"), log.StandardLogger())
	},
}

func init() {
	seederCmd.Flags().StringVarP(&fixturesPath, "file", "f", "", "YAML fixtures file (default: built-in fixtures)")
	seederCmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
}

func loadFixtures() (*seed.Fixtures, error) {
	if fixturesPath == "" {
		return seed.Default()
	}
	return seed.LoadFile(fixturesPath)
}

func run(ctx context.Context, cfg config.ClientConfig, username, password string, logger log.FieldLogger) error {
	if cfg.Degraded() {
		return &config.MissingEnvError{Names: cfg.Missing}
	}
	if username == "" || password == "" {
		return errors.New("SEED_USERNAME and SEED_PASSWORD are required")
	}

	fixtures, err := loadFixtures()
	if err != nil {
		return err
	}

	api := client.New(cfg.APIURL, cfg.AnonKey)
	if _, err := api.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	logger.WithFields(log.Fields{
		"api_url":           cfg.APIURL,
		"dropdown_settings": len(fixtures.DropdownSettings),
		"vehicles":          len(fixtures.Vehicles),
	}).Info("Starting seed")

	report, err := seed.Apply(ctx, api, validation.New(), fixtures, logger)
	if err != nil {
		return err
	}

	logger.WithFields(log.Fields{
		"dropdown_settings": report.Settings,
		"vehicles":          report.Vehicles,
		"rejected":          len(report.Rejected),
	}).Info("Seed completed")
	if len(report.Rejected) > 0 {
		return fmt.Errorf("%d fixtures were rejected", len(report.Rejected))
	}
	return nil
}

func main() {
	if err := seederCmd.Execute(); err != nil {
		log.WithError(err).Error("Seeding failed")
		os.Exit(1)
	}
}
