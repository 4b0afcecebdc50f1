package ci

import (
	"context"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

const preCommitName = "pre-commit"

// PreCommitPlatform runs from a pre-commit hook, where the work in progress
// is compared with the last commit.
type PreCommitPlatform struct {
	platform
}

// NewPreCommitPlatform creates the pre-commit hook adapter.
func NewPreCommitPlatform(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository {
	return &PreCommitPlatform{platform: newPlatform(env, vcs, opts)}
}

func (it *PreCommitPlatform) Name() string { return preCommitName }

func (it *PreCommitPlatform) DetectEnvironment() bool { return it.env("PRE_COMMIT") == "1" }

func (it *PreCommitPlatform) CommonAncestorCommit(_ context.Context) (string, error) {
	return headRef, nil
}

func (it *PreCommitPlatform) Label() string { return "pre-commit_" + it.headLabel() }

func (it *PreCommitPlatform) PostReport(_ context.Context, report string) error {
	return it.print(report)
}
