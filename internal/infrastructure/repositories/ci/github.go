package ci

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

const (
	gitHubName       = "github"
	gitHubPublicAPI  = "https://api.github.com"
	gitHubCommentsPP = 100
)

// GitHubPlatform supports GitHub Actions. Pull request reports are posted
// as issue comments through go-github.
type GitHubPlatform struct {
	platform
	comments commentCache

	eventLoaded bool
	pullRequest *gh.PullRequest
	before      string
}

// NewGitHubPlatform creates the GitHub Actions adapter.
func NewGitHubPlatform(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository {
	return &GitHubPlatform{platform: newPlatform(env, vcs, opts)}
}

func (it *GitHubPlatform) Name() string { return gitHubName }

func (it *GitHubPlatform) DetectEnvironment() bool { return it.env("GITHUB_ACTIONS") == "true" }

// loadEvent reads the webhook payload that triggered the workflow, once.
func (it *GitHubPlatform) loadEvent() error {
	if it.eventLoaded {
		return nil
	}

	path, err := it.requireEnv("GITHUB_EVENT_PATH")
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read the GitHub event: %w", err)
	}

	switch eventName := it.env("GITHUB_EVENT_NAME"); eventName {
	case "pull_request", "pull_request_target":
		var event gh.PullRequestEvent
		if err = json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to decode the %s event: %w", eventName, err)
		}
		it.pullRequest = event.GetPullRequest()
	case "push":
		var event gh.PushEvent
		if err = json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to decode the push event: %w", err)
		}
		it.before = event.GetBefore()
	default:
		logger.Debugf("GitHub event %q carries no diff base", eventName)
	}

	it.eventLoaded = true
	return nil
}

func (it *GitHubPlatform) CommonAncestorCommit(ctx context.Context) (string, error) {
	if err := it.loadEvent(); err != nil {
		return "", err
	}

	if it.pullRequest != nil {
		baseSHA := it.pullRequest.GetBase().GetSHA()
		if baseSHA == "" {
			return "", fmt.Errorf("%w: pull request event has no base sha", errMissingContext)
		}
		return it.vcs.MergeBase(ctx, baseSHA, headRef)
	}
	if !isNullSHA(it.before) {
		return it.before, nil
	}
	return it.defaultBranchAncestor(ctx)
}

func (it *GitHubPlatform) Label() string {
	if err := it.loadEvent(); err == nil && it.pullRequest != nil {
		return fmt.Sprintf("GitHub_PR#%d-%s", it.pullRequest.GetNumber(), it.pullRequest.GetHead().GetRef())
	}
	if ref, sha := it.env("GITHUB_REF_NAME"), it.env("GITHUB_SHA"); ref != "" && sha != "" {
		return "GitHub_" + ref + "_" + shortSHA(sha)
	}
	return "GitHub_" + it.headLabel()
}

// PostReport comments on the pull request, unless the latest report
// comment already says the same. Other events print the report.
func (it *GitHubPlatform) PostReport(ctx context.Context, report string) error {
	if err := it.loadEvent(); err != nil || it.pullRequest == nil {
		return it.print(report)
	}

	token := it.env("GITHUB_TOKEN")
	if token == "" {
		logger.Warn("GITHUB_TOKEN is not set, printing the report instead of commenting")
		return it.print(report)
	}

	owner, repo, err := it.repository()
	if err != nil {
		return err
	}
	client, err := it.client(token)
	if err != nil {
		return err
	}
	number := it.pullRequest.GetNumber()

	duplicate, err := it.comments.isDuplicate(ctx, func(ctx context.Context) (string, error) {
		return latestGitHubReport(ctx, client, owner, repo, number)
	}, report)
	if err != nil {
		return err
	}
	if duplicate {
		logger.Info("The pull request already has this report, not commenting again")
		return nil
	}

	if _, _, err = client.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.String(report)}); err != nil {
		return fmt.Errorf("failed to comment on pull request #%d: %w", number, err)
	}
	it.comments.remember(report)
	logger.Infof("Posted the report on pull request #%d", number)
	return nil
}

func (it *GitHubPlatform) repository() (string, string, error) {
	full, err := it.requireEnv("GITHUB_REPOSITORY")
	if err != nil {
		return "", "", err
	}
	owner, repo, ok := strings.Cut(full, "/")
	if !ok {
		return "", "", fmt.Errorf("%w: GITHUB_REPOSITORY %q is not owner/repo", errMissingContext, full)
	}
	return owner, repo, nil
}

func (it *GitHubPlatform) client(token string) (*gh.Client, error) {
	client := gh.NewClient(nil).WithAuthToken(token)
	apiURL := it.env("GITHUB_API_URL")
	if apiURL == "" || strings.TrimSuffix(apiURL, "/") == gitHubPublicAPI {
		return client, nil
	}

	enterprise, err := client.WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_API_URL %q: %w", apiURL, err)
	}
	return enterprise, nil
}

// latestGitHubReport returns the body of the most recent report comment, or "".
func latestGitHubReport(ctx context.Context, client *gh.Client, owner, repo string, number int) (string, error) {
	latest := ""
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: gitHubCommentsPP},
	}
	for {
		comments, resp, err := client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return "", fmt.Errorf("failed to list comments of pull request #%d: %w", number, err)
		}
		for _, comment := range comments {
			if isReport(comment.GetBody()) {
				latest = comment.GetBody()
			}
		}
		if resp.NextPage == 0 {
			return latest, nil
		}
		opts.Page = resp.NextPage
	}
}
