package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/analyzer"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/ci"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/detection"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/git"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Repositories that depend on runtime arguments are provided as factories
	if err := container.Provide(func() domainRepos.VersionControlFactory {
		return git.NewGitRepository
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.AnalyzerFactory {
		return analyzer.NewCLIAnalyzerRepository
	}); err != nil {
		return err
	}

	// Register the platform registry with every supported CI platform
	if err := container.Provide(ci.NewDefaultPlatformRegistry); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ci.PlatformRegistry) domainRepos.CIPlatformDetector {
		return impl
	}); err != nil {
		return err
	}

	if err := container.Provide(detection.NewFilesystemDetector); err != nil {
		return err
	}

	return nil
}
