package depfiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// worktreeMu serialises the create/use/remove sequence of historical worktrees.
var worktreeMu sync.Mutex //nolint:gochecknoglobals // guards repository-level worktree state

// manifestHistory materialises the whole tree at the ancestor commit, since a
// manifest may resolve against other files of the repository.
type manifestHistory struct{}

func (manifestHistory) kind() entities.DepfileKind { return entities.KindManifest }

func (manifestHistory) gatedOnChange() bool { return false }

func (manifestHistory) previousDeps(
	ctx context.Context,
	file *DependencyFile,
) ([]entities.PackageDescriptor, error) {
	worktreeMu.Lock()
	defer worktreeMu.Unlock()

	tmpDir, err := os.MkdirTemp("", "depgate-worktree-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	worktree := filepath.Join(tmpDir, "tree")
	if createErr := file.vcs.CreateDetachedWorktree(ctx, file.ancestor, worktree); createErr != nil {
		return nil, fmt.Errorf("failed to check out %s: %w", file.ancestor, createErr)
	}
	defer func() {
		// removal must happen even when ctx is already cancelled
		if rmErr := file.vcs.RemoveWorktree(context.WithoutCancel(ctx), worktree); rmErr != nil {
			logger.Warnf("Failed to remove worktree %s: %v", worktree, rmErr)
		}
	}()

	previous := filepath.Join(worktree, filepath.FromSlash(file.relPath))
	if _, statErr := os.Stat(previous); errors.Is(statErr, fs.ErrNotExist) {
		logger.Debugf("%s did not exist at %s", file.relPath, file.ancestor)
		return nil, nil
	}

	return file.parse(ctx, previous, worktree)
}
