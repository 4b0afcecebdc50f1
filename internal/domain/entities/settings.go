package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultAnalyzer is the analyzer binary looked up on PATH when none is configured.
const DefaultAnalyzer = "phylum"

// Settings is the runtime configuration of depgate.
type Settings struct {
	Analyzer         string                     `yaml:"analyzer"`
	Project          string                     `yaml:"project"`
	Group            string                     `yaml:"group"`
	Label            string                     `yaml:"label"`
	Depfiles         []DependencyFileDescriptor `yaml:"depfiles"`
	Thresholds       Thresholds                 `yaml:"thresholds"`
	FailOnIncomplete bool                       `yaml:"fail_on_incomplete"`
	AllDeps          bool                       `yaml:"all_deps"`
	ForceAnalysis    bool                       `yaml:"force_analysis"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewDefaultSettings returns the settings used when no config file exists.
func NewDefaultSettings() *Settings {
	return &Settings{Analyzer: DefaultAnalyzer}
}

// NewSettings reads and parses a configuration file, expanding environment
// variable references in string values.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	settings := NewDefaultSettings()
	if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Analyzer = expandEnv(settings.Analyzer)
	settings.Project = expandEnv(settings.Project)
	settings.Group = expandEnv(settings.Group)
	settings.Label = expandEnv(settings.Label)
	for i := range settings.Depfiles {
		settings.Depfiles[i].Path = expandEnv(settings.Depfiles[i].Path)
	}

	if validateErr := settings.Validate(); validateErr != nil {
		return nil, validateErr
	}
	return settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config", "configs"}
	if homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{".depgate.yaml", ".depgate.yml", "depgate.yaml", "depgate.yml"}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// Validate checks for inconsistent configuration values.
func (s *Settings) Validate() error {
	if s.Analyzer == "" {
		return errors.New("analyzer must not be empty")
	}
	for i, depfile := range s.Depfiles {
		if depfile.Path == "" {
			return fmt.Errorf("depfiles[%d].path is required", i)
		}
	}
	return s.Thresholds.Validate()
}

// expandEnv replaces ${VAR} references with their values.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}
