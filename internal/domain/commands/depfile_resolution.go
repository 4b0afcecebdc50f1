package commands

import (
	"context"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// resolveDepfiles merges declared and detected dependency files under root
// and gives every entry a concrete type and kind.
func resolveDepfiles(
	ctx context.Context,
	root string,
	declared []entities.DependencyFileDescriptor,
	detector repositories.DepfileDetectorRepository,
	analyzer repositories.AnalyzerRepository,
) ([]entities.DependencyFileDescriptor, error) {
	resolved := make([]entities.DependencyFileDescriptor, 0, len(declared))
	for _, entry := range declared {
		resolved = append(resolved, entry.Resolve(root))
	}

	detected, err := detector.Detect(root)
	if err != nil {
		return nil, fmt.Errorf("dependency file detection failed: %w", err)
	}

	merged := entities.MergeDescriptors(resolved, detected)
	result := make([]entities.DependencyFileDescriptor, 0, len(merged))
	for _, entry := range merged {
		classified, classifyErr := classify(ctx, root, entry, detector, analyzer)
		if classifyErr != nil {
			return nil, classifyErr
		}
		result = append(result, classified)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w under %s; declare them with --depfile <path>:<type>", entities.ErrNoDependencyFiles, root)
	}
	return result, nil
}

// classify fills in the type and kind of a declared entry that detection
// did not cover.
func classify(
	ctx context.Context,
	root string,
	entry entities.DependencyFileDescriptor,
	detector repositories.DepfileDetectorRepository,
	analyzer repositories.AnalyzerRepository,
) (entities.DependencyFileDescriptor, error) {
	if entry.Kind != "" && !entry.IsAuto() {
		return entry, nil
	}

	if depType, kind, ok := detector.Classify(entry.Path); ok {
		if entry.IsAuto() {
			entry.Type = depType
		}
		entry.Kind = kind
		return entry, nil
	}

	if entry.IsAuto() {
		return entry, fmt.Errorf(
			"the type of %s cannot be detected; declare it with --depfile %s:<type>", entry.Path, entry.Path,
		)
	}

	kind, err := classifyByProvenance(ctx, root, entry, analyzer)
	if err != nil {
		return entry, err
	}
	entry.Kind = kind
	return entry, nil
}

// classifyByProvenance parses the file from root and calls it a lockfile
// when every package was resolved from the file itself.
func classifyByProvenance(
	ctx context.Context,
	root string,
	entry entities.DependencyFileDescriptor,
	analyzer repositories.AnalyzerRepository,
) (entities.DepfileKind, error) {
	pkgs, err := analyzer.Parse(ctx, entry.Type, entry.Path, root)
	if err != nil {
		return "", &entities.ParseError{
			Path:        entry.Path,
			Type:        entry.Type,
			Remediation: "Make sure the file is a valid " + entry.Type + " dependency file.",
			Err:         err,
		}
	}

	name := filepath.Base(entry.Path)
	for _, pkg := range pkgs {
		if pkg.Lockfile == "" || filepath.Base(pkg.Lockfile) != name {
			logger.Debugf("%s resolves %s from %q, treating it as a manifest", entry.Path, pkg.Name, pkg.Lockfile)
			return entities.KindManifest, nil
		}
	}
	return entities.KindLockfile, nil
}
