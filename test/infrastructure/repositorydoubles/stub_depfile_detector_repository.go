//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"path/filepath"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// StubDepfileDetectorRepository implements repositories.DepfileDetectorRepository with canned answers.
type StubDepfileDetectorRepository struct {
	Detected  []entities.DependencyFileDescriptor
	DetectErr error
	Known     map[string]entities.DependencyFileDescriptor // base name -> type and kind
	Roots     []string
}

var _ repositories.DepfileDetectorRepository = (*StubDepfileDetectorRepository)(nil)

func (s *StubDepfileDetectorRepository) Detect(root string) ([]entities.DependencyFileDescriptor, error) {
	s.Roots = append(s.Roots, root)
	return s.Detected, s.DetectErr
}

func (s *StubDepfileDetectorRepository) Classify(path string) (string, entities.DepfileKind, bool) {
	known, ok := s.Known[filepath.Base(path)]
	if !ok {
		return "", "", false
	}
	return known.Type, known.Kind, true
}
