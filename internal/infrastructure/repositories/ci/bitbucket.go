package ci

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/restclient"
)

const (
	bitbucketName      = "bitbucket"
	bitbucketPublicAPI = "https://api.bitbucket.org/2.0"
)

// BitbucketPlatform supports Bitbucket Pipelines. Pull request reports are
// posted through the Bitbucket Cloud REST API.
type BitbucketPlatform struct {
	platform
	comments commentCache
}

type bitbucketContent struct {
	Raw string `json:"raw"`
}

type bitbucketComment struct {
	Content bitbucketContent `json:"content"`
}

// NewBitbucketPlatform creates the Bitbucket Pipelines adapter.
func NewBitbucketPlatform(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository {
	return &BitbucketPlatform{platform: newPlatform(env, vcs, opts)}
}

func (it *BitbucketPlatform) Name() string { return bitbucketName }

func (it *BitbucketPlatform) DetectEnvironment() bool { return it.env("BITBUCKET_COMMIT") != "" }

func (it *BitbucketPlatform) isPullRequest() bool { return it.env("BITBUCKET_PR_ID") != "" }

func (it *BitbucketPlatform) CommonAncestorCommit(ctx context.Context) (string, error) {
	if destination := it.env("BITBUCKET_PR_DESTINATION_BRANCH"); destination != "" {
		return it.remoteBranchAncestor(ctx, destination)
	}
	return it.defaultBranchAncestor(ctx)
}

func (it *BitbucketPlatform) Label() string {
	if it.isPullRequest() {
		return "Bitbucket_PR#" + it.env("BITBUCKET_PR_ID") + "-" + it.env("BITBUCKET_BRANCH")
	}
	if branch := it.env("BITBUCKET_BRANCH"); branch != "" {
		return "Bitbucket_" + branch + "_" + shortSHA(it.env("BITBUCKET_COMMIT"))
	}
	return "Bitbucket_" + it.headLabel()
}

// PostReport comments on the pull request unless the latest report comment
// is identical. Branch pipelines print the report.
func (it *BitbucketPlatform) PostReport(ctx context.Context, report string) error {
	if !it.isPullRequest() {
		return it.print(report)
	}

	token := it.env("BITBUCKET_TOKEN")
	if token == "" {
		logger.Warn("BITBUCKET_TOKEN is not set, printing the report instead of commenting")
		return it.print(report)
	}

	workspace, err := it.requireEnv("BITBUCKET_WORKSPACE")
	if err != nil {
		return err
	}
	slug, err := it.requireEnv("BITBUCKET_REPO_SLUG")
	if err != nil {
		return err
	}

	baseURL := it.env("BITBUCKET_API_URL")
	if baseURL == "" {
		baseURL = bitbucketPublicAPI
	}
	client := restclient.NewClient(baseURL, restclient.Bearer(token))
	endpoint := fmt.Sprintf("/repositories/%s/%s/pullrequests/%s/comments", workspace, slug, it.env("BITBUCKET_PR_ID"))

	duplicate, err := it.comments.isDuplicate(ctx, func(ctx context.Context) (string, error) {
		var page struct {
			Values []bitbucketComment `json:"values"`
		}
		if getErr := client.Get(ctx, endpoint+"?sort=-created_on&pagelen=50", &page); getErr != nil {
			return "", getErr
		}
		for _, comment := range page.Values {
			if isReport(comment.Content.Raw) {
				return comment.Content.Raw, nil
			}
		}
		return "", nil
	}, report)
	if err != nil {
		return err
	}
	if duplicate {
		logger.Info("The pull request already has this report, not commenting again")
		return nil
	}

	if err = client.Post(ctx, endpoint, bitbucketComment{Content: bitbucketContent{Raw: report}}); err != nil {
		return fmt.Errorf("failed to comment on pull request %s: %w", it.env("BITBUCKET_PR_ID"), err)
	}
	it.comments.remember(report)
	logger.Infof("Posted the report on pull request %s", it.env("BITBUCKET_PR_ID"))
	return nil
}
