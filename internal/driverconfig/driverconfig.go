// Package driverconfig loads formc.yaml, the driver's project-level
// configuration (spec.md §6 File driver / search path).
package driverconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/formlang/formc/internal/config"
)

// Config is the parsed contents of formc.yaml.
type Config struct {
	SearchPath     []string `yaml:"search_path"`
	DestinationDir string   `yaml:"destination_dir"`
	GeneratedDir   string   `yaml:"generated_dir"`
	InvokeThreshold int     `yaml:"invoke_threshold"`
}

// Default returns the configuration used when no formc.yaml is present.
func Default() Config {
	return Config{
		SearchPath:      []string{"src"},
		DestinationDir:  "lib",
		GeneratedDir:    config.GeneratedSubdir,
		InvokeThreshold: config.InvokeThreshold,
	}
}

// Load reads and parses path, falling back to Default() field-by-field for
// anything the file leaves zero.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Config{}, err
	}
	if len(parsed.SearchPath) > 0 {
		cfg.SearchPath = parsed.SearchPath
	}
	if parsed.DestinationDir != "" {
		cfg.DestinationDir = parsed.DestinationDir
	}
	if parsed.GeneratedDir != "" {
		cfg.GeneratedDir = parsed.GeneratedDir
	}
	if parsed.InvokeThreshold > 0 {
		cfg.InvokeThreshold = parsed.InvokeThreshold
	}
	return cfg, nil
}
