//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/depgate/internal/domain/commands"
	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// StubDetectCommand is a stub implementation of commands.Detect.
type StubDetectCommand struct {
	ExecuteCallCount int
	Detected         []entities.DependencyFileDescriptor
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.DetectOptions
}

var _ commands.Detect = (*StubDetectCommand)(nil)

func (s *StubDetectCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.DetectOptions,
) ([]entities.DependencyFileDescriptor, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.Detected, s.ExecuteErr
}
