//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// AnalyzedPackageBuilder creates analyzer results for a package. Every score
// defaults to a perfect 1.0.
type AnalyzedPackageBuilder struct {
	*testkit.BaseBuilder
	pkg    entities.PackageDescriptor
	scores entities.RiskScores
	issues []entities.Issue
}

func perfectScores() entities.RiskScores {
	return entities.RiskScores{
		Total: 1, Vulnerability: 1, Malicious: 1, Engineering: 1, License: 1, Author: 1,
	}
}

// NewAnalyzedPackageBuilder creates a new analyzed package builder.
func NewAnalyzedPackageBuilder() *AnalyzedPackageBuilder {
	return &AnalyzedPackageBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		pkg:         NewPackageDescriptorBuilder().BuildPackage(),
		scores:      perfectScores(),
	}
}

// WithPackage sets the analyzed package.
func (b *AnalyzedPackageBuilder) WithPackage(pkg entities.PackageDescriptor) *AnalyzedPackageBuilder {
	b.pkg = pkg
	return b
}

// WithScores replaces every risk score.
func (b *AnalyzedPackageBuilder) WithScores(scores entities.RiskScores) *AnalyzedPackageBuilder {
	b.scores = scores
	return b
}

// WithVulnerabilityScore sets the vulnerability domain score.
func (b *AnalyzedPackageBuilder) WithVulnerabilityScore(score float64) *AnalyzedPackageBuilder {
	b.scores.Vulnerability = score
	return b
}

// WithMaliciousScore sets the malicious code domain score.
func (b *AnalyzedPackageBuilder) WithMaliciousScore(score float64) *AnalyzedPackageBuilder {
	b.scores.Malicious = score
	return b
}

// WithIssue appends an issue.
func (b *AnalyzedPackageBuilder) WithIssue(issue entities.Issue) *AnalyzedPackageBuilder {
	b.issues = append(b.issues, issue)
	return b
}

// Build creates the analyzed package (satisfies testkit.Builder interface).
func (b *AnalyzedPackageBuilder) Build() interface{} {
	return b.BuildAnalyzedPackage()
}

// BuildAnalyzedPackage creates the analyzed package with a concrete return type.
func (b *AnalyzedPackageBuilder) BuildAnalyzedPackage() entities.AnalyzedPackage {
	issues := make([]entities.Issue, len(b.issues))
	copy(issues, b.issues)
	return entities.AnalyzedPackage{
		PackageDescriptor: b.pkg,
		RiskScores:        b.scores,
		Issues:            issues,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *AnalyzedPackageBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.pkg = NewPackageDescriptorBuilder().BuildPackage()
	b.scores = perfectScores()
	b.issues = nil
	return b
}

// Clone creates a deep copy of the AnalyzedPackageBuilder.
func (b *AnalyzedPackageBuilder) Clone() testkit.Builder {
	issues := make([]entities.Issue, len(b.issues))
	copy(issues, b.issues)
	return &AnalyzedPackageBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		pkg:         b.pkg,
		scores:      b.scores,
		issues:      issues,
	}
}
