// Package config loads rigforge settings via viper: global beam/node
// defaults used where a document carries no preset, construction
// capacity limits, and export backend selection.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// BuildDefaults are the global coefficients applied where a record has
// no enclosing defaults preset.
type BuildDefaults struct {
	BeamSpring   float64 `json:"beamSpring" mapstructure:"beamSpring"`
	BeamDamp     float64 `json:"beamDamp" mapstructure:"beamDamp"`
	BeamStrength float64 `json:"beamStrength" mapstructure:"beamStrength"`
	BeamDeform   float64 `json:"beamDeform" mapstructure:"beamDeform"`
	CreakFloor   float64 `json:"creakFloor" mapstructure:"creakFloor"`
	NodeFriction float64 `json:"nodeFriction" mapstructure:"nodeFriction"`
	NodeVolume   float64 `json:"nodeVolume" mapstructure:"nodeVolume"`
	NodeSurface  float64 `json:"nodeSurface" mapstructure:"nodeSurface"`
	MinimumMass  float64 `json:"minimumMass" mapstructure:"minimumMass"`
}

// Limits are the fixed construction capacities. Exceeding one abandons
// the remaining records of the current section.
type Limits struct {
	MaxWheels    int `json:"maxWheels" mapstructure:"maxWheels"`
	MaxCinecams  int `json:"maxCinecams" mapstructure:"maxCinecams"`
	MaxAirbrakes int `json:"maxAirbrakes" mapstructure:"maxAirbrakes"`
	MaxCameras   int `json:"maxCameras" mapstructure:"maxCameras"`
}

// ExportConfig selects and tunes the export backend.
type ExportConfig struct {
	Backend        string `json:"backend" mapstructure:"backend"` // "memory" or "sqlite"
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	SqlitePath     string `json:"sqlitePath" mapstructure:"sqlitePath"`
}

// Load reads configuration from a JSON file in configDir and sets
// default values for everything the file omits.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName("rigforge.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

// LoadDefaults installs the default values without reading any file,
// for library use and tests.
func LoadDefaults() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./rigforge-logs")

	viper.SetDefault("defaults.beamSpring", 9000000.0)
	viper.SetDefault("defaults.beamDamp", 12000.0)
	viper.SetDefault("defaults.beamStrength", 1000000.0)
	viper.SetDefault("defaults.beamDeform", 400000.0)
	viper.SetDefault("defaults.creakFloor", 100000.0)
	viper.SetDefault("defaults.nodeFriction", 1.0)
	viper.SetDefault("defaults.nodeVolume", 1.0)
	viper.SetDefault("defaults.nodeSurface", 1.0)
	viper.SetDefault("defaults.minimumMass", 50.0)

	viper.SetDefault("limits.maxWheels", 64)
	viper.SetDefault("limits.maxCinecams", 32)
	viper.SetDefault("limits.maxAirbrakes", 20)
	viper.SetDefault("limits.maxCameras", 10)

	viper.SetDefault("export.backend", "memory")
	viper.SetDefault("export.outputDir", "./rigforge-out")
	viper.SetDefault("export.compressOutput", false)
	viper.SetDefault("export.sqlitePath", "")
}

// GetBuildDefaults returns the global coefficient block.
func GetBuildDefaults() (BuildDefaults, error) {
	var d BuildDefaults
	if err := viper.UnmarshalKey("defaults", &d); err != nil {
		return d, fmt.Errorf("error unmarshalling defaults: %w", err)
	}
	return d, nil
}

// GetLimits returns the capacity block.
func GetLimits() (Limits, error) {
	var l Limits
	if err := viper.UnmarshalKey("limits", &l); err != nil {
		return l, fmt.Errorf("error unmarshalling limits: %w", err)
	}
	return l, nil
}

// GetExport returns the export block.
func GetExport() (ExportConfig, error) {
	var e ExportConfig
	if err := viper.UnmarshalKey("export", &e); err != nil {
		return e, fmt.Errorf("error unmarshalling export config: %w", err)
	}
	return e, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}
