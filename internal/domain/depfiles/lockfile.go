package depfiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

const tempFileMode = 0o600

// lockfileHistory reads the previous lockfile straight from the object
// database since a lockfile resolves without its sibling files.
type lockfileHistory struct{}

func (lockfileHistory) kind() entities.DepfileKind { return entities.KindLockfile }

func (lockfileHistory) gatedOnChange() bool { return true }

func (lockfileHistory) previousDeps(
	ctx context.Context,
	file *DependencyFile,
) ([]entities.PackageDescriptor, error) {
	content, found, err := file.vcs.BlobAtRevision(ctx, file.ancestor, file.relPath)
	if err != nil {
		return nil, fmt.Errorf("version control lookup of %s failed: %w", file.relPath, err)
	}
	if !found {
		logger.Debugf("%s did not exist at %s", file.relPath, file.ancestor)
		return nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "depgate-lockfile-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// same base name, parsers may rely on it
	tmpPath := filepath.Join(tmpDir, filepath.Base(file.path))
	if writeErr := os.WriteFile(tmpPath, content, tempFileMode); writeErr != nil {
		return nil, fmt.Errorf("failed to write previous %s: %w", file.relPath, writeErr)
	}

	return file.parse(ctx, tmpPath, tmpDir)
}
