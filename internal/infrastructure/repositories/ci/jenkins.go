package ci

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

const jenkinsName = "jenkins"

// JenkinsPlatform supports multibranch pipelines. Jenkins has no common
// comment API, so the report is printed to the build log.
type JenkinsPlatform struct {
	platform
}

// NewJenkinsPlatform creates the Jenkins adapter.
func NewJenkinsPlatform(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository {
	return &JenkinsPlatform{platform: newPlatform(env, vcs, opts)}
}

func (it *JenkinsPlatform) Name() string { return jenkinsName }

func (it *JenkinsPlatform) DetectEnvironment() bool { return it.env("JENKINS_URL") != "" }

func (it *JenkinsPlatform) isChangeRequest() bool { return it.env("CHANGE_ID") != "" }

func (it *JenkinsPlatform) CommonAncestorCommit(ctx context.Context) (string, error) {
	if target := it.env("CHANGE_TARGET"); target != "" {
		return it.remoteBranchAncestor(ctx, target)
	}
	if previous := it.env("GIT_PREVIOUS_SUCCESSFUL_COMMIT"); !isNullSHA(previous) {
		return previous, nil
	}
	logger.Debugf("No previous successful build, falling back to the default branch")
	return it.defaultBranchAncestor(ctx)
}

func (it *JenkinsPlatform) Label() string {
	if it.isChangeRequest() {
		return "Jenkins_PR#" + it.env("CHANGE_ID") + "-" + it.env("CHANGE_BRANCH")
	}

	branch := it.env("BRANCH_NAME")
	if branch == "" {
		branch = it.env("GIT_BRANCH")
	}
	commit := it.env("GIT_COMMIT")
	if branch == "" || commit == "" {
		return "Jenkins_" + it.headLabel()
	}
	return "Jenkins_" + branch + "_" + shortSHA(commit)
}

func (it *JenkinsPlatform) PostReport(_ context.Context, report string) error {
	return it.print(report)
}
