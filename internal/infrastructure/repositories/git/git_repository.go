package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/process"
)

const (
	gitBinary = "git"

	diffUnchanged = 0
	diffChanged   = 1
	verifyMissing = 1
)

// GitRepository implements repositories.VersionControlRepository with the git CLI.
type GitRepository struct {
	repoDir string
}

// NewGitRepository creates a gateway for the repository containing repoDir.
func NewGitRepository(repoDir string) repositories.VersionControlRepository {
	return &GitRepository{repoDir: repoDir}
}

func (it *GitRepository) run(ctx context.Context, args ...string) (string, error) {
	return process.Run(ctx, process.Options{Name: gitBinary, Args: args, Dir: it.repoDir})
}

func (it *GitRepository) RepoRoot(ctx context.Context) (string, error) {
	out, err := it.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%s is not inside a git repository: %w", it.repoDir, err)
	}
	return filepath.Clean(strings.TrimSpace(out)), nil
}

// RemoteName returns the only remote; diffs against an ambiguous remote are refused.
func (it *GitRepository) RemoteName(ctx context.Context) (string, error) {
	out, err := it.run(ctx, "remote")
	if err != nil {
		return "", fmt.Errorf("failed to list git remotes: %w", err)
	}

	remotes := strings.Fields(out)
	if len(remotes) != 1 {
		return "", fmt.Errorf("%w, found %d: [%s]", entities.ErrAmbiguousRemote, len(remotes), strings.Join(remotes, ", "))
	}
	return remotes[0], nil
}

// DefaultBranchName reads refs/remotes/<remote>/HEAD. When it is unset, it
// asks the remote once (this needs credentials) and reads it again.
func (it *GitRepository) DefaultBranchName(ctx context.Context, remote string) (string, error) {
	headRef := "refs/remotes/" + remote + "/HEAD"

	out, err := it.run(ctx, "symbolic-ref", "--short", headRef)
	if err == nil {
		return strings.TrimSpace(out), nil
	}

	logger.Warnf("%s is not set, trying `git remote set-head %s --auto`", headRef, remote)
	if _, setErr := it.run(ctx, "remote", "set-head", remote, "--auto"); setErr != nil {
		return "", fmt.Errorf("failed to set the default branch of %q: %w", remote, setErr)
	}

	out, err = it.run(ctx, "symbolic-ref", "--short", headRef)
	if err != nil {
		return "", fmt.Errorf("failed to find the default branch of %q: %w", remote, err)
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns "" when the refs cannot be resolved locally, which
// usually means the checkout is too shallow.
func (it *GitRepository) MergeBase(ctx context.Context, refA, refB string) (string, error) {
	out, err := it.run(ctx, "merge-base", refA, refB)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Warnf("Could not find a common ancestor of %s and %s; %s", refA, refB, entities.ShallowCheckoutHint)
		logger.Debugf("%v", err)
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

// PathChangedSince maps the exit code of `git diff --exit-code` to a change
// flag. Codes other than 0 and 1 are errors wrapping entities.ErrAmbiguousDiff.
func (it *GitRepository) PathChangedSince(ctx context.Context, revision, path string) (bool, error) {
	_, err := it.run(ctx, "diff", "--exit-code", "--quiet", revision, "--", path)
	switch code := process.ExitCode(err); {
	case err == nil || code == diffUnchanged:
		return false, nil
	case code == diffChanged:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s since %s; %s: %w",
			entities.ErrAmbiguousDiff, path, revision, entities.ShallowCheckoutHint, err)
	}
}

// BlobAtRevision distinguishes a path that did not exist at the revision
// (found=false) from a revision that cannot be read (error).
func (it *GitRepository) BlobAtRevision(ctx context.Context, revision, relPath string) ([]byte, bool, error) {
	if _, err := it.run(ctx, "rev-parse", "--verify", "--quiet", revision+"^{commit}"); err != nil {
		return nil, false, fmt.Errorf("revision %s is not available: %w", revision, err)
	}

	out, err := it.run(ctx, "rev-parse", "--verify", "--quiet", revision+":"+relPath)
	if err != nil {
		if process.ExitCode(err) == verifyMissing {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to resolve %s at %s: %w", relPath, revision, err)
	}

	object := strings.TrimSpace(out)
	content, err := it.run(ctx, "cat-file", "blob", object)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s at %s: %w", relPath, revision, err)
	}
	return []byte(content), true, nil
}

func (it *GitRepository) CreateDetachedWorktree(ctx context.Context, revision, dir string) error {
	if _, err := it.run(ctx, "worktree", "add", "--detach", dir, revision); err != nil {
		return fmt.Errorf("failed to create worktree at %s: %w", dir, err)
	}
	return nil
}

func (it *GitRepository) RemoveWorktree(ctx context.Context, dir string) error {
	if _, err := it.run(ctx, "worktree", "remove", "--force", dir); err != nil {
		return fmt.Errorf("failed to remove worktree at %s: %w", dir, err)
	}
	return nil
}

// HeadInfo reads HEAD through go-git so labels do not need another subprocess.
func (it *GitRepository) HeadInfo() (repositories.HeadInfo, error) {
	//nolint:exhaustruct // only the discovery options matter here
	repo, err := gogit.PlainOpenWithOptions(it.repoDir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return repositories.HeadInfo{}, fmt.Errorf("failed to open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return repositories.HeadInfo{}, fmt.Errorf("failed to read HEAD: %w", err)
	}

	info := repositories.HeadInfo{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}
