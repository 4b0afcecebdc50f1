package ci

import (
	"context"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

const noneName = "none"

// NonePlatform is used outside CI: it diffs against the remote's default
// branch and prints the report.
type NonePlatform struct {
	platform
}

// NewNonePlatform creates the fallback adapter.
func NewNonePlatform(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository {
	return &NonePlatform{platform: newPlatform(env, vcs, opts)}
}

func (it *NonePlatform) Name() string { return noneName }

func (it *NonePlatform) DetectEnvironment() bool { return true }

func (it *NonePlatform) CommonAncestorCommit(ctx context.Context) (string, error) {
	return it.defaultBranchAncestor(ctx)
}

func (it *NonePlatform) Label() string { return it.headLabel() }

func (it *NonePlatform) PostReport(_ context.Context, report string) error {
	return it.print(report)
}
