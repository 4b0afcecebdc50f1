package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/process"
)

var errEmptyVersion = errors.New("analyzer printed no version")

// CLIAnalyzerRepository implements repositories.AnalyzerRepository by
// running the analyzer binary as a subprocess.
type CLIAnalyzerRepository struct {
	binary string
}

// NewCLIAnalyzerRepository creates an analyzer gateway for the given
// executable name or path.
func NewCLIAnalyzerRepository(binary string) repositories.AnalyzerRepository {
	return &CLIAnalyzerRepository{binary: binary}
}

func (it *CLIAnalyzerRepository) Parse(
	ctx context.Context,
	ecosystem, path, workDir string,
) ([]repositories.ParsedPackage, error) {
	out, err := process.Run(ctx, process.Options{
		Name: it.binary,
		Args: []string{"parse", "--type", ecosystem, path},
		Dir:  workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s as %q: %w", path, ecosystem, err)
	}

	var pkgs []repositories.ParsedPackage
	if err = json.Unmarshal([]byte(out), &pkgs); err != nil {
		return nil, fmt.Errorf("failed to decode parser output for %s: %w", path, err)
	}
	return pkgs, nil
}

func (it *CLIAnalyzerRepository) Analyze(
	ctx context.Context,
	request entities.AnalysisRequest,
) (*entities.AnalysisResult, error) {
	packages := request.Packages
	if packages == nil {
		packages = []entities.PackageDescriptor{}
	}
	payload, err := json.Marshal(packages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode packages: %w", err)
	}

	args := []string{"analyze", "--json", "--label", request.Label}
	if request.Project != "" {
		args = append(args, "--project", request.Project)
	}
	if request.Group != "" {
		args = append(args, "--group", request.Group)
	}
	args = append(args, "-")

	out, err := process.Run(ctx, process.Options{
		Name:  it.binary,
		Args:  args,
		Stdin: bytes.NewReader(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("analysis of %d packages failed: %w", len(packages), err)
	}

	var result entities.AnalysisResult
	if err = json.Unmarshal([]byte(out), &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}

	switch result.Status {
	case entities.AnalysisComplete, entities.AnalysisIncomplete:
		return &result, nil
	default:
		return nil, fmt.Errorf("unexpected analysis status %q", result.Status)
	}
}

// Version returns the last field printed by `--version`, normalised to a
// semver string with a leading "v".
func (it *CLIAnalyzerRepository) Version(ctx context.Context) (string, error) {
	out, err := process.Run(ctx, process.Options{Name: it.binary, Args: []string{"--version"}})
	if err != nil {
		return "", fmt.Errorf("failed to get the analyzer version: %w", err)
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", errEmptyVersion
	}

	version := fields[len(fields)-1]
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return "", fmt.Errorf("analyzer version %q is not a semantic version", version)
	}
	return version, nil
}
