//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// SpyCIPlatformRepository implements repositories.CIPlatformRepository as a configurable spy.
type SpyCIPlatformRepository struct {
	PlatformName  string
	Detected      bool
	PlatformLabel string

	// --- CommonAncestorCommit ---
	Ancestor      string
	AncestorErr   error
	AncestorCalls int

	// --- PostReport ---
	PostErr error
	Reports []string
}

var _ repositories.CIPlatformRepository = (*SpyCIPlatformRepository)(nil)

func (s *SpyCIPlatformRepository) Name() string            { return s.PlatformName }
func (s *SpyCIPlatformRepository) DetectEnvironment() bool { return s.Detected }
func (s *SpyCIPlatformRepository) Label() string           { return s.PlatformLabel }

func (s *SpyCIPlatformRepository) CommonAncestorCommit(_ context.Context) (string, error) {
	s.AncestorCalls++
	return s.Ancestor, s.AncestorErr
}

func (s *SpyCIPlatformRepository) PostReport(_ context.Context, report string) error {
	s.Reports = append(s.Reports, report)
	return s.PostErr
}
