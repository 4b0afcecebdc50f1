package controllers

import (
	"fmt"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// AddGlobalFlags adds the flags shared by every command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")
	cmd.PersistentFlags().String("env-file", "",
		"Load environment variables from this file before anything else")
}

// addSelectionFlags adds the flags that choose the analyzer and the dependency files.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("analyzer", "", "Analyzer CLI binary (default \""+entities.DefaultAnalyzer+"\")")
	cmd.Flags().StringArray("depfile", nil,
		"Dependency file to track as path[:type], repeatable (type defaults to auto)")
}

// loadSettings resolves the configuration of one invocation: the env file,
// then the config file (or the defaults), then command-line overrides.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	flags := cmd.Flags()

	if verbose, _ := flags.GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
		logger.Debugf("Loaded environment from %s", envFile)
	}

	settings, err := readSettings(flags)
	if err != nil {
		return nil, err
	}

	if err = applyOverrides(flags, settings); err != nil {
		return nil, err
	}
	if err = settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func readSettings(flags *pflag.FlagSet) (*entities.Settings, error) {
	cfgPath, _ := flags.GetString("config")
	if cfgPath == "" {
		found, err := entities.FindConfigFile()
		if err != nil {
			logger.Debugf("No config file found, using defaults: %v", err)
			return entities.NewDefaultSettings(), nil
		}
		cfgPath = found
	}

	logger.Infof("Using config file: %s", cfgPath)
	settings, err := entities.NewSettings(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return settings, nil
}

// applyOverrides copies every flag the user set onto the settings.
func applyOverrides(flags *pflag.FlagSet, settings *entities.Settings) error {
	texts := map[string]*string{
		"analyzer": &settings.Analyzer,
		"project":  &settings.Project,
		"group":    &settings.Group,
		"label":    &settings.Label,
	}
	for name, target := range texts {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}

	bools := map[string]*bool{
		"force-analysis":     &settings.ForceAnalysis,
		"all-deps":           &settings.AllDeps,
		"fail-on-incomplete": &settings.FailOnIncomplete,
	}
	for name, target := range bools {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*target, _ = flags.GetBool(name)
		}
	}

	if flags.Lookup("depfile") == nil {
		return nil
	}
	raw, _ := flags.GetStringArray("depfile")
	for _, entry := range raw {
		descriptor, err := entities.ParseDescriptor(entry)
		if err != nil {
			return fmt.Errorf("invalid --depfile %q: %w", entry, err)
		}
		settings.Depfiles = append(settings.Depfiles, descriptor)
	}
	return nil
}
