//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations; no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// SpyVersionControlRepository implements repositories.VersionControlRepository as a configurable spy.
type SpyVersionControlRepository struct {
	// --- RepoRoot ---
	Root    string
	RootErr error

	// --- RemoteName / DefaultBranchName ---
	Remote           string
	RemoteErr        error
	DefaultBranch    string
	DefaultBranchErr error

	// --- MergeBase ---
	MergeBaseResult string
	MergeBaseErr    error
	MergeBaseCalls  [][2]string

	// --- PathChangedSince ---
	ChangedPaths   map[string]bool  // path -> changed
	ChangedErrs    map[string]error // path -> error
	ChangedQueries []string

	// --- BlobAtRevision ---
	Blobs    map[string][]byte // relPath -> content at the ancestor
	BlobErr  error
	BlobRevs []string

	// --- worktrees ---
	WorktreeFiles     map[string][]byte // relPath -> content written on creation
	CreateWorktreeErr error
	RemoveWorktreeErr error
	CreatedWorktrees  []string
	RemovedWorktrees  []string

	// --- HeadInfo ---
	Head    repositories.HeadInfo
	HeadErr error
}

var _ repositories.VersionControlRepository = (*SpyVersionControlRepository)(nil)

func (s *SpyVersionControlRepository) RepoRoot(_ context.Context) (string, error) {
	return s.Root, s.RootErr
}

func (s *SpyVersionControlRepository) RemoteName(_ context.Context) (string, error) {
	return s.Remote, s.RemoteErr
}

func (s *SpyVersionControlRepository) DefaultBranchName(_ context.Context, _ string) (string, error) {
	return s.DefaultBranch, s.DefaultBranchErr
}

func (s *SpyVersionControlRepository) MergeBase(_ context.Context, refA, refB string) (string, error) {
	s.MergeBaseCalls = append(s.MergeBaseCalls, [2]string{refA, refB})
	return s.MergeBaseResult, s.MergeBaseErr
}

func (s *SpyVersionControlRepository) PathChangedSince(_ context.Context, _, path string) (bool, error) {
	s.ChangedQueries = append(s.ChangedQueries, path)
	if err, ok := s.ChangedErrs[path]; ok {
		return false, err
	}
	return s.ChangedPaths[path], nil
}

func (s *SpyVersionControlRepository) BlobAtRevision(
	_ context.Context, revision, relPath string,
) ([]byte, bool, error) {
	s.BlobRevs = append(s.BlobRevs, revision)
	if s.BlobErr != nil {
		return nil, false, s.BlobErr
	}
	content, ok := s.Blobs[relPath]
	return content, ok, nil
}

func (s *SpyVersionControlRepository) CreateDetachedWorktree(_ context.Context, _, dir string) error {
	if s.CreateWorktreeErr != nil {
		return s.CreateWorktreeErr
	}
	s.CreatedWorktrees = append(s.CreatedWorktrees, dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for relPath, content := range s.WorktreeFiles {
		target := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, content, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func (s *SpyVersionControlRepository) RemoveWorktree(_ context.Context, dir string) error {
	s.RemovedWorktrees = append(s.RemovedWorktrees, dir)
	if s.RemoveWorktreeErr != nil {
		return s.RemoveWorktreeErr
	}
	return os.RemoveAll(dir)
}

func (s *SpyVersionControlRepository) HeadInfo() (repositories.HeadInfo, error) {
	return s.Head, s.HeadErr
}
