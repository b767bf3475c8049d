// Package seed loads YAML fixtures of dropdown settings and vehicles and
// writes them through the inventory API.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the content of a seed file.
type Fixtures struct {
	DropdownSettings []models.DropdownSetting `yaml:"dropdown_settings"`
	Vehicles         []map[string]any         `yaml:"vehicles"`
}

// Parse decodes fixtures. Unknown top-level keys are an error.
func Parse(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixtures
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// LoadFile parses the fixtures at path.
func LoadFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// Default returns the built-in fixtures.
func Default() (*Fixtures, error) {
	return Parse(bytes.NewReader(defaultFixtures))
}

// Writer is the part of the inventory API the seeder writes through.
type Writer interface {
	CreateDropdownSetting(ctx context.Context, setting models.DropdownSetting) (*models.DropdownSetting, error)
	CreateVehicle(ctx context.Context, fields map[string]any) (*models.Vehicle, error)
}

// Rejection records a fixture that was not written.
type Rejection struct {
	Kind  string
	Index int
	Err   error
}

// Report summarizes an Apply run.
type Report struct {
	Settings int
	Vehicles int
	Rejected []Rejection
}

// Apply writes every fixture. Vehicles are validated locally first and
// rejected without a request when invalid. Individual failures are recorded
// in the report; only a cancelled ctx stops the run early.
func Apply(ctx context.Context, w Writer, v *validation.Validator, f *Fixtures, logger log.FieldLogger) (Report, error) {
	var report Report

	for i, setting := range f.DropdownSettings {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := w.CreateDropdownSetting(ctx, setting); err != nil {
			logger.WithError(err).WithFields(log.Fields{"category": setting.Category, "value": setting.Value}).Error("Failed to create dropdown setting")
			report.Rejected = append(report.Rejected, Rejection{Kind: "dropdown_setting", Index: i, Err: err})
			continue
		}
		report.Settings++
	}

	for i, fields := range f.Vehicles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, violations := v.Vehicle(fields); violations != nil {
			logger.WithField("index", i).WithError(violations).Warn("Skipping invalid vehicle fixture")
			report.Rejected = append(report.Rejected, Rejection{Kind: "vehicle", Index: i, Err: violations})
			continue
		}
		created, err := w.CreateVehicle(ctx, fields)
		if err != nil {
			logger.WithError(err).WithField("index", i).Error("Failed to create vehicle")
			report.Rejected = append(report.Rejected, Rejection{Kind: "vehicle", Index: i, Err: err})
			continue
		}
		logger.WithFields(log.Fields{
			"vehicle_id": created.ID.Hex(),
			"make":       created.Make,
			"model":      created.Model,
		}).Info("Created vehicle")
		report.Vehicles++
	}

	return report, nil
}
