package ci

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

const (
	gitLabName    = "gitlab"
	gitLabNotesPP = 20
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// GitLabPlatform supports GitLab CI. Merge request reports are posted as
// notes through the GitLab API client.
type GitLabPlatform struct {
	platform
	comments commentCache
}

// NewGitLabPlatform creates the GitLab CI adapter.
func NewGitLabPlatform(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository {
	return &GitLabPlatform{platform: newPlatform(env, vcs, opts)}
}

func (it *GitLabPlatform) Name() string { return gitLabName }

func (it *GitLabPlatform) DetectEnvironment() bool { return it.env("GITLAB_CI") == "true" }

func (it *GitLabPlatform) isMergeRequest() bool { return it.env("CI_MERGE_REQUEST_IID") != "" }

func (it *GitLabPlatform) CommonAncestorCommit(ctx context.Context) (string, error) {
	if it.isMergeRequest() {
		if diffBase := it.env("CI_MERGE_REQUEST_DIFF_BASE_SHA"); diffBase != "" {
			return diffBase, nil
		}
		target, err := it.requireEnv("CI_MERGE_REQUEST_TARGET_BRANCH_NAME")
		if err != nil {
			return "", err
		}
		return it.remoteBranchAncestor(ctx, target)
	}

	if before := it.env("CI_COMMIT_BEFORE_SHA"); !isNullSHA(before) {
		return before, nil
	}
	if defaultBranch := it.env("CI_DEFAULT_BRANCH"); defaultBranch != "" {
		return it.remoteBranchAncestor(ctx, defaultBranch)
	}
	return it.defaultBranchAncestor(ctx)
}

func (it *GitLabPlatform) Label() string {
	if it.isMergeRequest() {
		return "GitLab_MR!" + it.env("CI_MERGE_REQUEST_IID") + "-" + it.env("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME")
	}
	if ref, sha := it.env("CI_COMMIT_REF_NAME"), it.env("CI_COMMIT_SHA"); ref != "" && sha != "" {
		return "GitLab_" + ref + "_" + shortSHA(sha)
	}
	return "GitLab_" + it.headLabel()
}

// PostReport adds a note to the merge request unless the latest report
// note is identical. Branch pipelines print the report.
func (it *GitLabPlatform) PostReport(ctx context.Context, report string) error {
	if !it.isMergeRequest() {
		return it.print(report)
	}

	token := it.env("GITLAB_TOKEN")
	if token == "" {
		logger.Warn("GITLAB_TOKEN is not set, printing the report instead of adding a note")
		return it.print(report)
	}

	pid, err := it.requireEnv("CI_PROJECT_ID")
	if err != nil {
		return err
	}
	iid, err := strconv.ParseInt(it.env("CI_MERGE_REQUEST_IID"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid CI_MERGE_REQUEST_IID: %w", err)
	}
	client, err := it.client(token)
	if err != nil {
		return err
	}

	duplicate, err := it.comments.isDuplicate(ctx, func(ctx context.Context) (string, error) {
		return latestGitLabReport(ctx, client, pid, iid)
	}, report)
	if err != nil {
		return err
	}
	if duplicate {
		logger.Info("The merge request already has this report, not adding another note")
		return nil
	}

	_, _, err = client.Notes.CreateMergeRequestNote(
		pid,
		iid,
		&gl.CreateMergeRequestNoteOptions{Body: gl.Ptr(report)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to add a note to merge request !%d: %w", iid, err)
	}
	it.comments.remember(report)
	logger.Infof("Posted the report on merge request !%d", iid)
	return nil
}

func (it *GitLabPlatform) client(token string) (*gl.Client, error) {
	var opts []gl.ClientOptionFunc
	if apiURL := it.env("CI_API_V4_URL"); apiURL != "" {
		opts = append(opts, gl.WithBaseURL(apiURL))
	}
	client, err := gl.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errClientNotInitialized, err)
	}
	return client, nil
}

// latestGitLabReport returns the body of the newest report note, or "".
func latestGitLabReport(ctx context.Context, client *gl.Client, pid string, iid int64) (string, error) {
	opts := &gl.ListMergeRequestNotesOptions{
		ListOptions: gl.ListOptions{PerPage: gitLabNotesPP},
		OrderBy:     gl.Ptr("created_at"),
		Sort:        gl.Ptr("desc"),
	}
	for {
		notes, resp, err := client.Notes.ListMergeRequestNotes(pid, iid, opts, gl.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("failed to list notes of merge request !%d: %w", iid, err)
		}
		for _, note := range notes {
			if isReport(note.Body) {
				return note.Body, nil
			}
		}
		if resp.NextPage == 0 {
			return "", nil
		}
		opts.Page = resp.NextPage
	}
}
