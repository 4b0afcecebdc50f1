//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/depgate/internal/domain/commands"
	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// StubAnalyzeCommand is a stub implementation of commands.Analyze.
type StubAnalyzeCommand struct {
	ExecuteCallCount int
	ExecuteCode      entities.ReturnCode
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.AnalyzeOptions
}

var _ commands.Analyze = (*StubAnalyzeCommand)(nil)

func (s *StubAnalyzeCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.AnalyzeOptions,
) (entities.ReturnCode, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.ExecuteCode, s.ExecuteErr
}
