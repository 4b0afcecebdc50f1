//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// StubCIPlatformDetector implements repositories.CIPlatformDetector with a fixed answer.
type StubCIPlatformDetector struct {
	Platform repositories.CIPlatformRepository
	Err      error
}

var _ repositories.CIPlatformDetector = (*StubCIPlatformDetector)(nil)

func (s *StubCIPlatformDetector) DetectPlatform(
	_ repositories.VersionControlRepository,
) (repositories.CIPlatformRepository, error) {
	return s.Platform, s.Err
}
