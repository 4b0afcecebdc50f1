package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/depfiles"
	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// AncestorSource supplies the commit new dependencies are measured against.
// CI platform adapters implement it.
type AncestorSource interface {
	CommonAncestorCommit(ctx context.Context) (string, error)
}

// ChangeAggregator drives every tracked dependency file through change
// detection and consolidates their dependency sets. It is not safe for
// concurrent use.
type ChangeAggregator struct {
	source AncestorSource
	vcs    repositories.VersionControlRepository
	files  []*depfiles.DependencyFile

	ancestorComputed bool
	ancestor         string
	ancestorErr      error
}

// NewChangeAggregator creates an aggregator with no tracked files.
func NewChangeAggregator(source AncestorSource, vcs repositories.VersionControlRepository) *ChangeAggregator {
	return &ChangeAggregator{source: source, vcs: vcs}
}

// CommonAncestorCommit asks the source once and remembers the answer,
// including a failure. An empty commit means there is no prior version.
func (it *ChangeAggregator) CommonAncestorCommit(ctx context.Context) (string, error) {
	if it.ancestorComputed {
		return it.ancestor, it.ancestorErr
	}

	it.ancestor, it.ancestorErr = it.source.CommonAncestorCommit(ctx)
	it.ancestorComputed = true
	if it.ancestorErr == nil {
		if it.ancestor == "" {
			logger.Info("No common ancestor commit, every dependency will be considered new")
		} else {
			logger.Infof("Common ancestor commit: %s", it.ancestor)
		}
	}
	return it.ancestor, it.ancestorErr
}

// Track adds dependency files to the aggregate.
func (it *ChangeAggregator) Track(files ...*depfiles.DependencyFile) {
	it.files = append(it.files, files...)
}

// IsAnyDepfileChanged sets the change status of every tracked file and
// reports whether at least one changed. All files are evaluated even after
// a change is found, since later queries need every status.
func (it *ChangeAggregator) IsAnyDepfileChanged(ctx context.Context) (bool, error) {
	ancestor, err := it.CommonAncestorCommit(ctx)
	if err != nil {
		return false, err
	}

	anyChanged := false
	for _, file := range it.files {
		if ancestor == "" {
			file.SetChanged(true)
			anyChanged = true
			continue
		}

		changed, diffErr := it.vcs.PathChangedSince(ctx, ancestor, file.Path())
		if diffErr != nil {
			if errors.Is(diffErr, entities.ErrAmbiguousDiff) {
				logger.Warnf("Could not tell whether %s changed; %s", file.RelativePath(), entities.ShallowCheckoutHint)
			}
			return false, fmt.Errorf("change detection for %s failed: %w", file.RelativePath(), diffErr)
		}

		file.SetChanged(changed)
		if changed {
			logger.Infof("Dependency file %s changed since %s", file.RelativePath(), ancestor)
			anyChanged = true
		} else {
			logger.Debugf("Dependency file %s is unchanged since %s", file.RelativePath(), ancestor)
		}
	}
	return anyChanged, nil
}

// NewDeps returns the sorted union of the new dependencies of every file.
func (it *ChangeAggregator) NewDeps(ctx context.Context) ([]entities.PackageDescriptor, error) {
	return it.collect(ctx, (*depfiles.DependencyFile).NewDeps)
}

// CurrentDeps returns the sorted union of the current dependencies of every file.
func (it *ChangeAggregator) CurrentDeps(ctx context.Context) ([]entities.PackageDescriptor, error) {
	return it.collect(ctx, (*depfiles.DependencyFile).CurrentDeps)
}

func (it *ChangeAggregator) collect(
	ctx context.Context,
	deps func(*depfiles.DependencyFile, context.Context) ([]entities.PackageDescriptor, error),
) ([]entities.PackageDescriptor, error) {
	var all []entities.PackageDescriptor
	for _, file := range it.files {
		pkgs, err := deps(file, ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, pkgs...)
	}
	return entities.SortedUnique(all), nil
}
