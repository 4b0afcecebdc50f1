//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depgate/internal/domain/commands"
	"github.com/rios0rios0/depgate/internal/domain/depfiles"
	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
	"github.com/rios0rios0/depgate/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/depgate/test/infrastructure/repositorydoubles"
)

func pkg(name, version, eco string) entities.PackageDescriptor {
	return entitybuilders.NewPackageDescriptorBuilder().
		WithName(name).
		WithVersion(version).
		WithEcosystem(eco).
		BuildPackage()
}

// writeDepfile writes a package list the spy analyzer will parse.
func writeDepfile(t *testing.T, root, rel string, pkgs ...entities.PackageDescriptor) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, doubles.PackageListJSON(pkgs...), 0o600))
	return path
}

func trackedLockfile(
	t *testing.T,
	root, path, ancestor string,
	analyzer *doubles.SpyAnalyzerRepository,
	vcs *doubles.SpyVersionControlRepository,
) *depfiles.DependencyFile {
	t.Helper()
	file, err := depfiles.NewLockfile(
		entities.DependencyFileDescriptor{Path: path, Type: "npm", Kind: entities.KindLockfile},
		depfiles.Collaborators{Analyzer: analyzer, VCS: vcs, RepoRoot: root, CommonAncestor: ancestor},
	)
	require.NoError(t, err)
	return file
}

func TestChangeAggregator_CommonAncestorCommit(t *testing.T) {
	t.Parallel()

	t.Run("should ask the source only once", func(t *testing.T) {
		t.Parallel()

		// given
		source := &doubles.SpyCIPlatformRepository{Ancestor: "abc"}
		aggregator := commands.NewChangeAggregator(source, &doubles.SpyVersionControlRepository{})

		// when
		first, firstErr := aggregator.CommonAncestorCommit(context.Background())
		second, secondErr := aggregator.CommonAncestorCommit(context.Background())

		// then
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.Equal(t, "abc", first)
		assert.Equal(t, "abc", second)
		assert.Equal(t, 1, source.AncestorCalls)
	})

	t.Run("should remember a failure", func(t *testing.T) {
		t.Parallel()

		// given
		source := &doubles.SpyCIPlatformRepository{AncestorErr: errors.New("no event")}
		aggregator := commands.NewChangeAggregator(source, &doubles.SpyVersionControlRepository{})

		// when
		_, firstErr := aggregator.CommonAncestorCommit(context.Background())
		_, secondErr := aggregator.CommonAncestorCommit(context.Background())

		// then
		require.Error(t, firstErr)
		assert.Equal(t, firstErr, secondErr)
		assert.Equal(t, 1, source.AncestorCalls)
	})
}

func TestChangeAggregator_IsAnyDepfileChanged(t *testing.T) {
	t.Parallel()

	t.Run("should set the status of every file", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		changedPath := writeDepfile(t, root, "a/package-lock.json")
		unchangedPath := writeDepfile(t, root, "b/package-lock.json")
		vcs := &doubles.SpyVersionControlRepository{ChangedPaths: map[string]bool{changedPath: true}}
		analyzer := &doubles.SpyAnalyzerRepository{}
		changedFile := trackedLockfile(t, root, changedPath, "abc", analyzer, vcs)
		unchangedFile := trackedLockfile(t, root, unchangedPath, "abc", analyzer, vcs)
		aggregator := commands.NewChangeAggregator(&doubles.SpyCIPlatformRepository{Ancestor: "abc"}, vcs)
		aggregator.Track(changedFile, unchangedFile)

		// when
		changed, err := aggregator.IsAnyDepfileChanged(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []string{changedPath, unchangedPath}, vcs.ChangedQueries)
		isChanged, known := changedFile.IsChanged()
		assert.True(t, known)
		assert.True(t, isChanged)
		isChanged, known = unchangedFile.IsChanged()
		assert.True(t, known)
		assert.False(t, isChanged)
	})

	t.Run("should report no change when nothing changed", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		path := writeDepfile(t, root, "package-lock.json")
		vcs := &doubles.SpyVersionControlRepository{}
		aggregator := commands.NewChangeAggregator(&doubles.SpyCIPlatformRepository{Ancestor: "abc"}, vcs)
		aggregator.Track(trackedLockfile(t, root, path, "abc", &doubles.SpyAnalyzerRepository{}, vcs))

		// when
		changed, err := aggregator.IsAnyDepfileChanged(context.Background())

		// then
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("should treat every file as changed without an ancestor", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		path := writeDepfile(t, root, "package-lock.json")
		vcs := &doubles.SpyVersionControlRepository{}
		file := trackedLockfile(t, root, path, "", &doubles.SpyAnalyzerRepository{}, vcs)
		aggregator := commands.NewChangeAggregator(&doubles.SpyCIPlatformRepository{}, vcs)
		aggregator.Track(file)

		// when
		changed, err := aggregator.IsAnyDepfileChanged(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Empty(t, vcs.ChangedQueries)
	})

	t.Run("should return an ambiguous diff", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		path := writeDepfile(t, root, "package-lock.json")
		vcs := &doubles.SpyVersionControlRepository{ChangedErrs: map[string]error{
			path: fmt.Errorf("%w: exit 128", entities.ErrAmbiguousDiff),
		}}
		aggregator := commands.NewChangeAggregator(&doubles.SpyCIPlatformRepository{Ancestor: "abc"}, vcs)
		aggregator.Track(trackedLockfile(t, root, path, "abc", &doubles.SpyAnalyzerRepository{}, vcs))

		// when
		_, err := aggregator.IsAnyDepfileChanged(context.Background())

		// then
		require.ErrorIs(t, err, entities.ErrAmbiguousDiff)
	})
}

func TestChangeAggregator_NewDeps(t *testing.T) {
	t.Parallel()

	t.Run("should consolidate new dependencies across files", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		left := writeDepfile(t, root, "web/package-lock.json", pkg("react", "18.0.0", "npm"), pkg("lodash", "4.0.0", "npm"))
		right := writeDepfile(t, root, "api/package-lock.json", pkg("lodash", "4.0.0", "npm"), pkg("axios", "1.0.0", "npm"))
		vcs := &doubles.SpyVersionControlRepository{
			ChangedPaths: map[string]bool{left: true, right: true},
			Blobs: map[string][]byte{
				"web/package-lock.json": doubles.PackageListJSON(pkg("react", "18.0.0", "npm")),
			},
		}
		analyzer := &doubles.SpyAnalyzerRepository{}
		aggregator := commands.NewChangeAggregator(&doubles.SpyCIPlatformRepository{Ancestor: "abc"}, vcs)
		aggregator.Track(
			trackedLockfile(t, root, left, "abc", analyzer, vcs),
			trackedLockfile(t, root, right, "abc", analyzer, vcs),
		)
		_, err := aggregator.IsAnyDepfileChanged(context.Background())
		require.NoError(t, err)

		// when
		added, err := aggregator.NewDeps(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.PackageDescriptor{
			pkg("axios", "1.0.0", "npm"),
			pkg("lodash", "4.0.0", "npm"),
		}, added)
	})

	t.Run("should return every current dependency", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		path := writeDepfile(t, root, "package-lock.json", pkg("react", "18.0.0", "npm"))
		vcs := &doubles.SpyVersionControlRepository{}
		aggregator := commands.NewChangeAggregator(&doubles.SpyCIPlatformRepository{Ancestor: "abc"}, vcs)
		aggregator.Track(trackedLockfile(t, root, path, "abc", &doubles.SpyAnalyzerRepository{}, vcs))

		// when
		current, err := aggregator.CurrentDeps(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.PackageDescriptor{pkg("react", "18.0.0", "npm")}, current)
	})

	t.Run("should propagate a parse failure", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		path := filepath.Join(root, "package-lock.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
		vcs := &doubles.SpyVersionControlRepository{ChangedPaths: map[string]bool{path: true}}
		aggregator := commands.NewChangeAggregator(&doubles.SpyCIPlatformRepository{Ancestor: "abc"}, vcs)
		aggregator.Track(trackedLockfile(t, root, path, "abc", &doubles.SpyAnalyzerRepository{}, vcs))
		_, err := aggregator.IsAnyDepfileChanged(context.Background())
		require.NoError(t, err)

		// when
		_, err = aggregator.NewDeps(context.Background())

		// then
		var parseErr *entities.ParseError
		require.ErrorAs(t, err, &parseErr)
	})
}

// writeParsed writes parser output that carries lockfile provenance.
func writeParsed(t *testing.T, path string, pkgs ...repositories.ParsedPackage) {
	t.Helper()
	data, err := json.Marshal(pkgs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}
