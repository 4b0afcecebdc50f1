package ci

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/restclient"
)

const (
	azureName               = "azure"
	azureAPIVersion         = "api-version=7.0"
	azureContinuationHeader = "x-ms-continuationtoken"
	threadActive            = 1
	commentText             = 1
)

// AzurePipelinesPlatform supports Azure Pipelines. Pull request reports are
// posted as comment threads through the Azure DevOps REST API.
type AzurePipelinesPlatform struct {
	platform
	comments commentCache
}

type azureComment struct {
	ParentCommentID int    `json:"parentCommentId"`
	Content         string `json:"content"`
	CommentType     int    `json:"commentType"`
}

type azureThread struct {
	Comments []azureComment `json:"comments"`
	Status   int            `json:"status,omitempty"`
}

// NewAzurePipelinesPlatform creates the Azure Pipelines adapter.
func NewAzurePipelinesPlatform(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository {
	return &AzurePipelinesPlatform{platform: newPlatform(env, vcs, opts)}
}

func (it *AzurePipelinesPlatform) Name() string { return azureName }

func (it *AzurePipelinesPlatform) DetectEnvironment() bool {
	return strings.EqualFold(it.env("TF_BUILD"), "true")
}

func (it *AzurePipelinesPlatform) isPullRequest() bool {
	return it.env("SYSTEM_PULLREQUEST_PULLREQUESTID") != ""
}

func (it *AzurePipelinesPlatform) CommonAncestorCommit(ctx context.Context) (string, error) {
	if target := it.env("SYSTEM_PULLREQUEST_TARGETBRANCH"); target != "" {
		return it.remoteBranchAncestor(ctx, target)
	}
	return it.defaultBranchAncestor(ctx)
}

func (it *AzurePipelinesPlatform) Label() string {
	if it.isPullRequest() {
		source := strings.TrimPrefix(it.env("SYSTEM_PULLREQUEST_SOURCEBRANCH"), "refs/heads/")
		return "AzurePipelines_PR#" + it.env("SYSTEM_PULLREQUEST_PULLREQUESTID") + "-" + source
	}
	if branch, sha := it.env("BUILD_SOURCEBRANCHNAME"), it.env("BUILD_SOURCEVERSION"); branch != "" && sha != "" {
		return "AzurePipelines_" + branch + "_" + shortSHA(sha)
	}
	return "AzurePipelines_" + it.headLabel()
}

// PostReport opens a thread on the pull request unless the latest report
// thread is identical. Other builds print the report.
func (it *AzurePipelinesPlatform) PostReport(ctx context.Context, report string) error {
	if !it.isPullRequest() {
		return it.print(report)
	}

	token := it.env("SYSTEM_ACCESSTOKEN")
	if token == "" {
		logger.Warn("SYSTEM_ACCESSTOKEN is not mapped into the job, printing the report instead of commenting")
		return it.print(report)
	}

	endpoint, err := it.threadsEndpoint()
	if err != nil {
		return err
	}
	client := restclient.NewClient(it.env("SYSTEM_COLLECTIONURI"), restclient.BasicPAT(token))

	duplicate, err := it.comments.isDuplicate(ctx, func(ctx context.Context) (string, error) {
		return latestAzureReport(ctx, client, endpoint)
	}, report)
	if err != nil {
		return err
	}
	if duplicate {
		logger.Info("The pull request already has this report, not commenting again")
		return nil
	}

	thread := azureThread{
		Comments: []azureComment{{ParentCommentID: 0, Content: report, CommentType: commentText}},
		Status:   threadActive,
	}
	if err = client.Post(ctx, endpoint+"?"+azureAPIVersion, thread); err != nil {
		return fmt.Errorf("failed to comment on pull request %s: %w", it.env("SYSTEM_PULLREQUEST_PULLREQUESTID"), err)
	}
	it.comments.remember(report)
	logger.Infof("Posted the report on pull request %s", it.env("SYSTEM_PULLREQUEST_PULLREQUESTID"))
	return nil
}

// latestAzureReport walks every page of pull request threads, following the
// continuation token, and returns the last report comment.
func latestAzureReport(ctx context.Context, client *restclient.Client, endpoint string) (string, error) {
	latest := ""
	continuation := ""
	for {
		query := endpoint + "?" + azureAPIVersion
		if continuation != "" {
			query += "&continuationToken=" + url.QueryEscape(continuation)
		}

		var threads struct {
			Value []azureThread `json:"value"`
		}
		header, err := client.GetWithHeaders(ctx, query, &threads)
		if err != nil {
			return "", err
		}
		for _, thread := range threads.Value {
			for _, comment := range thread.Comments {
				if isReport(comment.Content) {
					latest = comment.Content
				}
			}
		}

		continuation = header.Get(azureContinuationHeader)
		if continuation == "" {
			return latest, nil
		}
	}
}

func (it *AzurePipelinesPlatform) threadsEndpoint() (string, error) {
	for _, key := range []string{"SYSTEM_COLLECTIONURI", "SYSTEM_TEAMPROJECT", "BUILD_REPOSITORY_ID"} {
		if _, err := it.requireEnv(key); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("/%s/_apis/git/repositories/%s/pullRequests/%s/threads",
		url.PathEscape(it.env("SYSTEM_TEAMPROJECT")),
		it.env("BUILD_REPOSITORY_ID"),
		it.env("SYSTEM_PULLREQUEST_PULLREQUESTID"),
	), nil
}
