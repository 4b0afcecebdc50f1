//go:build unit

package ci_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/ci"
)

func TestPlatformRegistry_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "no CI variables", env: map[string]string{}, want: "none"},
		{name: "GitHub Actions", env: map[string]string{"GITHUB_ACTIONS": "true"}, want: "github"},
		{name: "GitLab CI", env: map[string]string{"GITLAB_CI": "true"}, want: "gitlab"},
		{name: "Azure Pipelines", env: map[string]string{"TF_BUILD": "True"}, want: "azure"},
		{name: "Bitbucket Pipelines", env: map[string]string{"BITBUCKET_COMMIT": "abc"}, want: "bitbucket"},
		{name: "Jenkins", env: map[string]string{"JENKINS_URL": "https://ci.example.com"}, want: "jenkins"},
		{
			name: "pre-commit hook inside a CI job",
			env:  map[string]string{"PRE_COMMIT": "1", "GITHUB_ACTIONS": "true"},
			want: "pre-commit",
		},
		{
			name: "GitHub wins over Jenkins variables",
			env:  map[string]string{"GITHUB_ACTIONS": "true", "JENKINS_URL": "https://ci.example.com"},
			want: "github",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			registry := ci.NewDefaultPlatformRegistry()

			// when
			platform, err := registry.Detect(envOf(tt.env), spyVCS())

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.want, platform.Name())
		})
	}
}

func TestPlatformRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("should keep the probing order of the default registry", func(t *testing.T) {
		t.Parallel()

		// given
		registry := ci.NewDefaultPlatformRegistry()

		// when
		names := registry.Names()

		// then
		assert.Equal(t, []string{"pre-commit", "github", "gitlab", "azure", "bitbucket", "jenkins", "none"}, names)
	})

	t.Run("should replace a factory without moving it", func(t *testing.T) {
		t.Parallel()

		// given
		registry := ci.NewPlatformRegistry()
		registry.Register("github", ci.NewGitHubPlatform)
		registry.Register("none", ci.NewNonePlatform)
		replaced := false
		registry.Register("github", func(
			env ci.Getenv, vcs repositories.VersionControlRepository, opts ...ci.Option,
		) repositories.CIPlatformRepository {
			replaced = true
			return ci.NewGitHubPlatform(env, vcs, opts...)
		})

		// when
		platform, err := registry.Detect(envOf(nil), spyVCS())

		// then
		require.NoError(t, err)
		assert.True(t, replaced)
		assert.Equal(t, "none", platform.Name())
		assert.Equal(t, []string{"github", "none"}, registry.Names())
	})

	t.Run("should fail when nothing matches", func(t *testing.T) {
		t.Parallel()

		// given
		registry := ci.NewPlatformRegistry()
		registry.Register("github", ci.NewGitHubPlatform)

		// when
		_, err := registry.Detect(envOf(nil), spyVCS())

		// then
		require.Error(t, err)
	})
}
