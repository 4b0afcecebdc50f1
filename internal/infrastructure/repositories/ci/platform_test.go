//go:build unit

package ci_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/ci"
)

func TestNonePlatform(t *testing.T) {
	t.Parallel()

	t.Run("should diff against the merge-base with the default branch", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		platform := ci.NewNonePlatform(envOf(nil), vcs)

		// when
		ancestor, err := platform.CommonAncestorCommit(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "ancestor-sha", ancestor)
		assert.Equal(t, [][2]string{{"origin/main", "HEAD"}}, vcs.MergeBaseCalls)
	})

	t.Run("should propagate an ambiguous remote", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		vcs.RemoteErr = fmt.Errorf("%w, found 2", entities.ErrAmbiguousRemote)
		platform := ci.NewNonePlatform(envOf(nil), vcs)

		// when
		_, err := platform.CommonAncestorCommit(context.Background())

		// then
		require.ErrorIs(t, err, entities.ErrAmbiguousRemote)
		assert.Empty(t, vcs.MergeBaseCalls)
	})

	t.Run("should propagate a default branch that cannot be determined", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		vcs.DefaultBranchErr = errors.New("failed to set the default branch of \"origin\"")
		platform := ci.NewNonePlatform(envOf(nil), vcs)

		// when
		ancestor, err := platform.CommonAncestorCommit(context.Background())

		// then
		require.ErrorIs(t, err, vcs.DefaultBranchErr)
		assert.Empty(t, ancestor)
		assert.Empty(t, vcs.MergeBaseCalls)
	})

	t.Run("should label with the branch and short commit", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		vcs.Head = repositories.HeadInfo{Branch: "feature/x", Hash: "0123456789abcdef"}
		platform := ci.NewNonePlatform(envOf(nil), vcs)

		// when
		label := platform.Label()

		// then
		assert.Equal(t, "feature/x_0123456", label)
	})

	t.Run("should label a detached HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		vcs.Head = repositories.HeadInfo{Hash: "0123456789abcdef"}
		platform := ci.NewNonePlatform(envOf(nil), vcs)

		// when
		label := platform.Label()

		// then
		assert.Equal(t, "detached_0123456", label)
	})

	t.Run("should print the report", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		platform := ci.NewNonePlatform(envOf(nil), spyVCS(), ci.WithOutput(&out))

		// when
		err := platform.PostReport(context.Background(), "all good")

		// then
		require.NoError(t, err)
		assert.Equal(t, "all good\n", out.String())
	})
}

func TestPreCommitPlatform(t *testing.T) {
	t.Parallel()

	t.Run("should compare the working tree with HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		vcs.Head = repositories.HeadInfo{Branch: "main", Hash: "abcdef0123"}
		platform := ci.NewPreCommitPlatform(envOf(map[string]string{"PRE_COMMIT": "1"}), vcs)

		// when
		ancestor, err := platform.CommonAncestorCommit(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, platform.DetectEnvironment())
		assert.Equal(t, "HEAD", ancestor)
		assert.Equal(t, "pre-commit_main_abcdef0", platform.Label())
		assert.Empty(t, vcs.MergeBaseCalls)
	})
}

func TestJenkinsPlatform(t *testing.T) {
	t.Parallel()

	t.Run("should use the change target of a pull request build", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		env := envOf(map[string]string{
			"JENKINS_URL": "https://ci", "CHANGE_ID": "42", "CHANGE_TARGET": "develop", "CHANGE_BRANCH": "feature",
		})
		platform := ci.NewJenkinsPlatform(env, vcs)

		// when
		ancestor, err := platform.CommonAncestorCommit(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "ancestor-sha", ancestor)
		assert.Equal(t, [][2]string{{"origin/develop", "HEAD"}}, vcs.MergeBaseCalls)
		assert.Equal(t, "Jenkins_PR#42-feature", platform.Label())
	})

	t.Run("should use the previous successful commit of a branch build", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		env := envOf(map[string]string{
			"JENKINS_URL":                    "https://ci",
			"GIT_PREVIOUS_SUCCESSFUL_COMMIT": "prev123",
			"BRANCH_NAME":                    "main",
			"GIT_COMMIT":                     "fedcba9876",
		})
		platform := ci.NewJenkinsPlatform(env, vcs)

		// when
		ancestor, err := platform.CommonAncestorCommit(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "prev123", ancestor)
		assert.Empty(t, vcs.MergeBaseCalls)
		assert.Equal(t, "Jenkins_main_fedcba9", platform.Label())
	})

	t.Run("should fall back to the default branch on a first build", func(t *testing.T) {
		t.Parallel()

		// given
		vcs := spyVCS()
		platform := ci.NewJenkinsPlatform(envOf(map[string]string{"JENKINS_URL": "https://ci"}), vcs)

		// when
		ancestor, err := platform.CommonAncestorCommit(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "ancestor-sha", ancestor)
		assert.Equal(t, [][2]string{{"origin/main", "HEAD"}}, vcs.MergeBaseCalls)
	})
}
