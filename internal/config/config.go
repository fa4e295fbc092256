// Package config handles flterrain configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Generate GenerateConfig `yaml:"generate"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// TerrainConfig holds defaults applied when converting images.
type TerrainConfig struct {
	DefaultAuthors  []string `yaml:"default_authors"`
	HeightSoftCapCM uint16   `yaml:"height_soft_cap_cm"` // warn above this height
	WarnNonSquare   bool     `yaml:"warn_non_square"`
}

// GenerateConfig holds noise terrain generation settings.
type GenerateConfig struct {
	Width         uint32  `yaml:"width"`
	Height        uint32  `yaml:"height"`
	Seed          int64   `yaml:"seed"`
	Alpha         float64 `yaml:"alpha"`
	Beta          float64 `yaml:"beta"`
	Octaves       int32   `yaml:"octaves"`
	Frequency     float64 `yaml:"frequency"`
	MaxHeightCM   uint16  `yaml:"max_height_cm"`
	WaterLevel    uint16  `yaml:"water_level"`
	MountainLevel uint16  `yaml:"mountain_level"`
}

// PreviewConfig holds preview rendering settings.
type PreviewConfig struct {
	Scale int    `yaml:"scale"`
	Mode  string `yaml:"mode"` // "height" or "type"
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Terrain: TerrainConfig{
			HeightSoftCapCM: 6400,
			WarnNonSquare:   true,
		},
		Generate: GenerateConfig{
			Width:         128,
			Height:        128,
			Seed:          1,
			Alpha:         2,
			Beta:          2,
			Octaves:       3,
			Frequency:     0.03,
			MaxHeightCM:   6400,
			WaterLevel:    1600,
			MountainLevel: 4800,
		},
		Preview: PreviewConfig{
			Scale: 4,
			Mode:  "height",
		},
	}
}
