package controllers

import (
	"context"
	"fmt"
	"text/tabwriter"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depgate/internal/domain/commands"
	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// DetectController handles the "detect" subcommand.
type DetectController struct {
	command commands.Detect
	exit    func(code int)
}

// NewDetectController creates a new DetectController.
func NewDetectController(command commands.Detect) *DetectController {
	return &DetectController{command: command, exit: logger.Exit}
}

// GetBind returns the Cobra command metadata for the detect controller.
func (it *DetectController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "detect [path]",
		Short: "List the dependency files an analysis would track",
		Long: `Walk the repository and print every manifest and lockfile with its
type and kind, after merging the declared dependency files.`,
	}
}

// Execute prints the resolved dependency files as a table.
func (it *DetectController) Execute(cmd *cobra.Command, args []string) {
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

	descriptors, err := it.command.Execute(ctx, settings, commands.DetectOptions{RepoDir: repoDir})
	if err != nil {
		logger.Errorf("Detection failed: %v", err)
		it.exit(int(entities.ReturnFatal))
		return
	}

	table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(table, "PATH\tTYPE\tKIND")
	for _, descriptor := range descriptors {
		_, _ = fmt.Fprintf(table, "%s\t%s\t%s\n", descriptor.Path, descriptor.Type, descriptor.Kind)
	}
	_ = table.Flush()
}

// AddFlags adds the detect-specific flags to the given Cobra command.
func (it *DetectController) AddFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
}
