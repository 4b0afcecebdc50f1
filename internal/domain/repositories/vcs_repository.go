package repositories

import "context"

// HeadInfo describes the commit currently checked out.
type HeadInfo struct {
	Branch string // empty when HEAD is detached
	Hash   string
}

// VersionControlRepository wraps the version-control operations needed to
// find and read the previous state of dependency files.
type VersionControlRepository interface {
	// RepoRoot returns the absolute path of the working tree root.
	RepoRoot(ctx context.Context) (string, error)

	// RemoteName returns the sole configured remote.
	RemoteName(ctx context.Context) (string, error)

	// DefaultBranchName returns the remote's default branch as "<remote>/<branch>".
	DefaultBranchName(ctx context.Context, remote string) (string, error)

	// MergeBase returns the common ancestor of two refs, or "" when the refs
	// cannot be resolved locally.
	MergeBase(ctx context.Context, refA, refB string) (string, error)

	// PathChangedSince reports whether path differs from its state at revision.
	PathChangedSince(ctx context.Context, revision, path string) (bool, error)

	// BlobAtRevision returns the content of relPath at revision. found is
	// false when the path did not exist at that revision.
	BlobAtRevision(ctx context.Context, revision, relPath string) (content []byte, found bool, err error)

	// CreateDetachedWorktree checks revision out into dir.
	CreateDetachedWorktree(ctx context.Context, revision, dir string) error

	// RemoveWorktree removes a worktree created by CreateDetachedWorktree.
	RemoveWorktree(ctx context.Context, dir string) error

	// HeadInfo returns the branch and commit of HEAD.
	HeadInfo() (HeadInfo, error)
}
