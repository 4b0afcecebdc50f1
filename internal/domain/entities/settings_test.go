package entities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".depgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestNewSettings(t *testing.T) {
	t.Run("should load every field", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
analyzer: /opt/phylum/bin/phylum
project: web
group: platform
label: nightly
fail_on_incomplete: true
all_deps: true
depfiles:
  - path: requirements-prod.txt
    type: pip
  - path: go.mod
thresholds:
  vulnerability: 60
  malicious: 80
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "/opt/phylum/bin/phylum", settings.Analyzer)
		assert.Equal(t, "web", settings.Project)
		assert.Equal(t, "platform", settings.Group)
		assert.Equal(t, "nightly", settings.Label)
		assert.True(t, settings.FailOnIncomplete)
		assert.True(t, settings.AllDeps)
		require.Len(t, settings.Depfiles, 2)
		assert.Equal(t, "pip", settings.Depfiles[0].Type)
		assert.True(t, settings.Depfiles[1].IsAuto())
		assert.Equal(t, 60, settings.Thresholds.Vulnerability)
		assert.Equal(t, 80, settings.Thresholds.Malicious)
	})

	t.Run("should default the analyzer", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "project: web\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.DefaultAnalyzer, settings.Analyzer)
	})

	t.Run("should expand environment variable references", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("DEPGATE_TEST_PROJECT", "payments")
		path := writeConfig(t, "project: ${DEPGATE_TEST_PROJECT}-api\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "payments-api", settings.Project)
	})

	t.Run("should reject out of range thresholds", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "thresholds:\n  total: 150\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "total")
	})

	t.Run("should reject depfiles without a path", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "depfiles:\n  - type: npm\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "depfiles[0].path")
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "analyzer: [unterminated\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("should fail when the file does not exist", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NewSettings(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.Error(t, err)
	})
}
