package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depgate/internal/domain/commands"
	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// AnalyzeController handles the "analyze" subcommand, also run by the root command.
type AnalyzeController struct {
	command commands.Analyze
	exit    func(code int)
}

// NewAnalyzeController creates a new AnalyzeController.
func NewAnalyzeController(command commands.Analyze) *AnalyzeController {
	return &AnalyzeController{command: command, exit: logger.Exit}
}

// GetBind returns the Cobra command metadata for the analyze controller.
func (it *AnalyzeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "analyze [path]",
		Short: "Analyze the dependencies added since the common ancestor commit",
		Long: `Find the dependency files of the repository, compare them with the
commit the current change is based on, and submit only the newly added
dependencies to the analyzer.

The base commit comes from the detected CI platform (pull/merge request
target, previous push, last successful build) and falls back to the
merge-base with the remote default branch. The verdict is posted back to
the pull request when a token is available, and printed otherwise.

Exit codes: 0 pass, 1 thresholds failed, 2 error, 5 analysis incomplete.`,
	}
}

// Execute runs one analysis and exits with its return code when it is not a pass.
func (it *AnalyzeController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	repoDir := "."
	if len(args) > 0 {
		repoDir = args[0]
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		it.exit(int(entities.ReturnFatal))
		return
	}

	code, err := it.command.Execute(ctx, settings, commands.AnalyzeOptions{RepoDir: repoDir})
	if err != nil {
		logger.Errorf("Analysis failed: %v", err)
	}
	if code != entities.ReturnPass {
		it.exit(int(code))
	}
}

// AddFlags adds the analyze-specific flags to the given Cobra command.
func (it *AnalyzeController) AddFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
	cmd.Flags().Bool("force-analysis", false,
		"Submit an analysis even when no dependency changed")
	cmd.Flags().Bool("all-deps", false,
		"Analyze every current dependency instead of only the new ones")
	cmd.Flags().Bool("fail-on-incomplete", false,
		"Exit with code 5 when the analysis is still incomplete")
	cmd.Flags().String("project", "", "Analyzer project to submit to")
	cmd.Flags().String("group", "", "Analyzer group owning the project")
	cmd.Flags().String("label", "", "Label of the submitted analysis (default: derived from the CI platform)")
}
