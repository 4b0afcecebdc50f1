package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/depgate/internal/domain/depfiles"
	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// Analyze is the interface for the analyze command.
type Analyze interface {
	Execute(ctx context.Context, settings *entities.Settings, opts AnalyzeOptions) (entities.ReturnCode, error)
}

// AnalyzeOptions holds runtime options for a single analysis.
type AnalyzeOptions struct {
	RepoDir string
}

// AnalyzeCommand finds the dependencies introduced since the common
// ancestor commit, submits them for analysis and reports the verdict:
// detect platform -> resolve dependency files -> diff -> analyze -> report.
type AnalyzeCommand struct {
	openVCS     repositories.VersionControlFactory
	newAnalyzer repositories.AnalyzerFactory
	platforms   repositories.CIPlatformDetector
	detector    repositories.DepfileDetectorRepository
}

// NewAnalyzeCommand creates a new AnalyzeCommand.
func NewAnalyzeCommand(
	openVCS repositories.VersionControlFactory,
	newAnalyzer repositories.AnalyzerFactory,
	platforms repositories.CIPlatformDetector,
	detector repositories.DepfileDetectorRepository,
) *AnalyzeCommand {
	return &AnalyzeCommand{
		openVCS:     openVCS,
		newAnalyzer: newAnalyzer,
		platforms:   platforms,
		detector:    detector,
	}
}

// Execute runs one analysis. A non-nil error is always paired with
// entities.ReturnFatal.
func (it *AnalyzeCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts AnalyzeOptions,
) (entities.ReturnCode, error) {
	vcs := it.openVCS(opts.RepoDir)
	root, err := vcs.RepoRoot(ctx)
	if err != nil {
		return entities.ReturnFatal, err
	}

	platform, err := it.platforms.DetectPlatform(vcs)
	if err != nil {
		return entities.ReturnFatal, err
	}
	logger.Infof("CI platform: %s", platform.Name())

	analyzer := it.newAnalyzer(settings.Analyzer)
	if err = checkAnalyzerVersion(ctx, analyzer); err != nil {
		return entities.ReturnFatal, err
	}

	descriptors, err := resolveDepfiles(ctx, root, settings.Depfiles, it.detector, analyzer)
	if err != nil {
		return entities.ReturnFatal, err
	}

	aggregator := NewChangeAggregator(platform, vcs)
	ancestor, err := aggregator.CommonAncestorCommit(ctx)
	if err != nil {
		return entities.ReturnFatal, fmt.Errorf("failed to find the common ancestor commit: %w", err)
	}

	for _, descriptor := range descriptors {
		file, newErr := depfiles.New(descriptor, depfiles.Collaborators{
			Analyzer:       analyzer,
			VCS:            vcs,
			RepoRoot:       root,
			CommonAncestor: ancestor,
		})
		if newErr != nil {
			return entities.ReturnFatal, newErr
		}
		logger.Infof("Tracking %s %s (%s)", file.Kind(), file.RelativePath(), file.Ecosystem())
		aggregator.Track(file)
	}

	changed, err := aggregator.IsAnyDepfileChanged(ctx)
	if err != nil {
		return entities.ReturnFatal, err
	}
	if !changed && !settings.ForceAnalysis && !settings.AllDeps {
		logger.Info("No dependency file changed, nothing to analyze")
		return entities.ReturnPass, nil
	}

	var pkgs []entities.PackageDescriptor
	if settings.AllDeps {
		pkgs, err = aggregator.CurrentDeps(ctx)
	} else {
		pkgs, err = aggregator.NewDeps(ctx)
	}
	if err != nil {
		return entities.ReturnFatal, err
	}
	logger.Infof("Found %d dependencies to analyze", len(pkgs))

	if len(pkgs) == 0 && !settings.ForceAnalysis {
		logger.Info("No new dependencies, nothing to analyze")
		return entities.ReturnPass, nil
	}

	label := settings.Label
	if label == "" {
		label = platform.Label()
	}

	result, err := analyzer.Analyze(ctx, entities.AnalysisRequest{
		Label:    label,
		Project:  settings.Project,
		Group:    settings.Group,
		Packages: pkgs,
	})
	if err != nil {
		return entities.ReturnFatal, err
	}

	verdict := settings.Thresholds.Evaluate(*result, settings.FailOnIncomplete)
	report := entities.RenderReport(verdict, *result, pkgs)
	if err = platform.PostReport(ctx, report); err != nil {
		return entities.ReturnFatal, fmt.Errorf("failed to publish the report: %w", err)
	}

	logger.Infof("Analysis %s finished with return code %d", result.JobID, verdict.Code)
	return verdict.Code, nil
}

// checkAnalyzerVersion refuses analyzers older than the supported minimum.
func checkAnalyzerVersion(ctx context.Context, analyzer repositories.AnalyzerRepository) error {
	version, err := analyzer.Version(ctx)
	if err != nil {
		return err
	}
	if semver.Compare(version, entities.MinimumAnalyzerVersion) < 0 {
		return fmt.Errorf("%w: found %s, need %s or newer", entities.ErrAnalyzerTooOld, version, entities.MinimumAnalyzerVersion)
	}
	logger.Debugf("Analyzer version %s", version)
	return nil
}
