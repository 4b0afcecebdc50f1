package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depgate/internal"
	"github.com/rios0rios0/depgate/internal/infrastructure/controllers"
)

func buildRootCommand(analyzeController *controllers.AnalyzeController) *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "depgate [path]",
		Short: "Gate CI builds on the risk of newly added dependencies",
		Long: `Detects the dependency manifests and lockfiles of a repository, works out
which dependencies were added since the commit the change is based on,
and submits only those to a software-composition analyzer.

Supports GitHub Actions, GitLab CI, Azure Pipelines, Bitbucket Pipelines,
Jenkins and pre-commit; anything else falls back to the remote default branch.

Usage modes:
  depgate                 Analyze the repository in the current directory
  depgate /path/to/repo   Analyze a specific repository
  depgate detect          List the dependency files that would be tracked`,
		Args: cobra.MaximumNArgs(1),
		Run:  analyzeController.Execute,
	}

	controllers.AddGlobalFlags(cmd)
	analyzeController.AddFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.MaximumNArgs(1),
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		ctrl.AddFlags(subCmd)

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// Inject controllers via DIG
	container := newContainer()
	cobraRoot := buildRootCommand(injectAnalyzeController(container))

	// Add all subcommands
	addSubcommands(cobraRoot, injectAppContext(container))

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'depgate': %s", err)
	}
}
