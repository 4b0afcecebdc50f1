//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// PackageDescriptorBuilder helps create test packages with a fluent interface.
type PackageDescriptorBuilder struct {
	*testkit.BaseBuilder
	name      string
	version   string
	ecosystem string
}

// NewPackageDescriptorBuilder creates a new package builder with sensible defaults.
func NewPackageDescriptorBuilder() *PackageDescriptorBuilder {
	return &PackageDescriptorBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "test-package",
		version:     "1.0.0",
		ecosystem:   "npm",
	}
}

// WithName sets the package name.
func (b *PackageDescriptorBuilder) WithName(name string) *PackageDescriptorBuilder {
	b.name = name
	return b
}

// WithVersion sets the package version.
func (b *PackageDescriptorBuilder) WithVersion(version string) *PackageDescriptorBuilder {
	b.version = version
	return b
}

// WithEcosystem sets the package ecosystem.
func (b *PackageDescriptorBuilder) WithEcosystem(ecosystem string) *PackageDescriptorBuilder {
	b.ecosystem = ecosystem
	return b
}

// Build creates the package (satisfies testkit.Builder interface).
func (b *PackageDescriptorBuilder) Build() interface{} {
	return b.BuildPackage()
}

// BuildPackage creates the package with a concrete return type.
func (b *PackageDescriptorBuilder) BuildPackage() entities.PackageDescriptor {
	return entities.PackageDescriptor{
		Name:      b.name,
		Version:   b.version,
		Ecosystem: b.ecosystem,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *PackageDescriptorBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-package"
	b.version = "1.0.0"
	b.ecosystem = "npm"
	return b
}

// Clone creates a deep copy of the PackageDescriptorBuilder.
func (b *PackageDescriptorBuilder) Clone() testkit.Builder {
	return &PackageDescriptorBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		version:     b.version,
		ecosystem:   b.ecosystem,
	}
}
