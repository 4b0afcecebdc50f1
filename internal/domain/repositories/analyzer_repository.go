package repositories

import (
	"context"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// ParsedPackage is a package as reported by the analyzer's parser, with the
// lockfile it was resolved from.
type ParsedPackage struct {
	entities.PackageDescriptor
	Lockfile string `json:"lockfile,omitempty"`
}

// AnalyzerRepository abstracts the external software-composition-analysis CLI.
type AnalyzerRepository interface {
	// Parse extracts the packages declared by the file at path. workDir is
	// the working directory of the parser, empty for the current one.
	Parse(ctx context.Context, ecosystem, path, workDir string) ([]ParsedPackage, error)

	// Analyze submits packages for risk analysis.
	Analyze(ctx context.Context, request entities.AnalysisRequest) (*entities.AnalysisResult, error)

	// Version returns the analyzer's version as a semver string ("v1.2.3").
	Version(ctx context.Context) (string, error)
}
