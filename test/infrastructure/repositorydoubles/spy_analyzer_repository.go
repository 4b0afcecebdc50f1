//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// ParseCall records a single invocation of Parse.
type ParseCall struct {
	Ecosystem string
	Path      string
	WorkDir   string
}

// SpyAnalyzerRepository implements repositories.AnalyzerRepository as a configurable spy.
// Parse reads the file it is given and decodes it as a JSON array of packages,
// so a test controls the parser output through the file contents.
type SpyAnalyzerRepository struct {
	// --- Parse ---
	// ParseHook is consulted before reading the file; a non-nil error fails the call.
	ParseHook  func(call ParseCall) error
	ParseCalls []ParseCall

	// --- Analyze ---
	Result       *entities.AnalysisResult
	AnalyzeErr   error
	AnalyzeCalls []entities.AnalysisRequest

	// --- Version ---
	VersionResult string
	VersionErr    error
}

var _ repositories.AnalyzerRepository = (*SpyAnalyzerRepository)(nil)

func (s *SpyAnalyzerRepository) Parse(
	_ context.Context, ecosystem, path, workDir string,
) ([]repositories.ParsedPackage, error) {
	call := ParseCall{Ecosystem: ecosystem, Path: path, WorkDir: workDir}
	s.ParseCalls = append(s.ParseCalls, call)
	if s.ParseHook != nil {
		if err := s.ParseHook(call); err != nil {
			return nil, err
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkgs []repositories.ParsedPackage
	if unmarshalErr := json.Unmarshal(content, &pkgs); unmarshalErr != nil {
		return nil, fmt.Errorf("invalid package list in %s: %w", path, unmarshalErr)
	}
	return pkgs, nil
}

func (s *SpyAnalyzerRepository) Analyze(
	_ context.Context, request entities.AnalysisRequest,
) (*entities.AnalysisResult, error) {
	s.AnalyzeCalls = append(s.AnalyzeCalls, request)
	if s.AnalyzeErr != nil {
		return nil, s.AnalyzeErr
	}
	if s.Result == nil {
		return &entities.AnalysisResult{Status: entities.AnalysisComplete}, nil
	}
	return s.Result, nil
}

func (s *SpyAnalyzerRepository) Version(_ context.Context) (string, error) {
	return s.VersionResult, s.VersionErr
}

// PackageListJSON renders packages in the format the spy's Parse reads.
func PackageListJSON(pkgs ...entities.PackageDescriptor) []byte {
	data, err := json.Marshal(pkgs)
	if err != nil {
		panic(err)
	}
	return data
}
