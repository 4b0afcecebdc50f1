package commands

import (
	"context"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// Detect is the interface for the detect command.
type Detect interface {
	Execute(ctx context.Context, settings *entities.Settings, opts DetectOptions) ([]entities.DependencyFileDescriptor, error)
}

// DetectOptions holds runtime options for a detection run.
type DetectOptions struct {
	RepoDir string
}

// DetectCommand lists the dependency files an analysis would track.
type DetectCommand struct {
	openVCS     repositories.VersionControlFactory
	newAnalyzer repositories.AnalyzerFactory
	detector    repositories.DepfileDetectorRepository
}

// NewDetectCommand creates a new DetectCommand.
func NewDetectCommand(
	openVCS repositories.VersionControlFactory,
	newAnalyzer repositories.AnalyzerFactory,
	detector repositories.DepfileDetectorRepository,
) *DetectCommand {
	return &DetectCommand{openVCS: openVCS, newAnalyzer: newAnalyzer, detector: detector}
}

// Execute resolves the dependency files under the repository root, or under
// RepoDir itself when it is not inside a repository.
func (it *DetectCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts DetectOptions,
) ([]entities.DependencyFileDescriptor, error) {
	root, err := it.openVCS(opts.RepoDir).RepoRoot(ctx)
	if err != nil {
		logger.Debugf("Not inside a repository, detecting from %s: %v", opts.RepoDir, err)
		if root, err = filepath.Abs(opts.RepoDir); err != nil {
			return nil, err
		}
	}

	return resolveDepfiles(ctx, root, settings.Depfiles, it.detector, it.newAnalyzer(settings.Analyzer))
}
