// Package detection finds dependency files in a working tree by name and
// confirms ambiguous ones by looking at their content.
package detection

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// sniffer inspects a candidate file and returns its type, or false when the
// file is not really a dependency file of that kind.
type sniffer func(path, defaultType string) (string, bool)

type rule struct {
	match   func(name string) bool
	depType string
	kind    entities.DepfileKind
	sniff   sniffer
}

func exactly(name string) func(string) bool {
	return func(candidate string) bool { return candidate == name }
}

func acceptAll(_ string, defaultType string) (string, bool) { return defaultType, true }

//nolint:gochecknoglobals // read-only lookup table
var rules = []rule{
	{match: exactly("package-lock.json"), depType: "npm", kind: entities.KindLockfile},
	{match: exactly("npm-shrinkwrap.json"), depType: "npm", kind: entities.KindLockfile},
	{match: exactly("yarn.lock"), depType: "yarn", kind: entities.KindLockfile},
	{match: exactly("pnpm-lock.yaml"), depType: "pnpm", kind: entities.KindLockfile, sniff: sniffPnpmLock},
	{match: exactly("poetry.lock"), depType: "poetry", kind: entities.KindLockfile},
	{match: exactly("Pipfile.lock"), depType: "pipenv", kind: entities.KindLockfile},
	{match: isRequirementsFile, depType: "pip", kind: entities.KindLockfile},
	{match: exactly("go.sum"), depType: "go", kind: entities.KindLockfile},
	{match: exactly("Cargo.lock"), depType: "cargo", kind: entities.KindLockfile},
	{match: exactly("Gemfile.lock"), depType: "gem", kind: entities.KindLockfile},
	{match: exactly("composer.lock"), depType: "composer", kind: entities.KindLockfile},
	{match: exactly("gradle.lockfile"), depType: "gradle", kind: entities.KindLockfile},
	{match: exactly("packages.lock.json"), depType: "nugetlock", kind: entities.KindLockfile},
	{match: exactly(".terraform.lock.hcl"), depType: "terraform", kind: entities.KindLockfile, sniff: sniffTerraformLock},

	{match: exactly("package.json"), depType: "npm", kind: entities.KindManifest},
	{match: exactly("pyproject.toml"), depType: "pip", kind: entities.KindManifest, sniff: sniffPyproject},
	{match: exactly("Pipfile"), depType: "pipenv", kind: entities.KindManifest},
	{match: exactly("go.mod"), depType: "go", kind: entities.KindManifest, sniff: sniffGoMod},
	{match: exactly("Cargo.toml"), depType: "cargo", kind: entities.KindManifest, sniff: sniffCargoManifest},
	{match: exactly("Gemfile"), depType: "gem", kind: entities.KindManifest},
	{match: exactly("composer.json"), depType: "composer", kind: entities.KindManifest},
	{match: exactly("pom.xml"), depType: "maven", kind: entities.KindManifest},
	{match: exactly("build.gradle"), depType: "gradle", kind: entities.KindManifest},
	{match: exactly("build.gradle.kts"), depType: "gradle", kind: entities.KindManifest},
	{match: isProjectFile, depType: "msbuild", kind: entities.KindManifest},
}

//nolint:gochecknoglobals // read-only lookup table
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"target":       true,
	".terraform":   true,
}

func isRequirementsFile(name string) bool {
	return strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt")
}

func isProjectFile(name string) bool {
	return strings.HasSuffix(name, ".csproj")
}

// FilesystemDetector implements repositories.DepfileDetectorRepository.
type FilesystemDetector struct{}

// NewFilesystemDetector creates a detector over the local filesystem.
func NewFilesystemDetector() repositories.DepfileDetectorRepository {
	return &FilesystemDetector{}
}

// Detect walks root and returns every recognised dependency file, sorted by
// path. Paths excluded by the repository's ignore files are skipped.
func (it *FilesystemDetector) Detect(root string) ([]entities.DependencyFileDescriptor, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root %q: %w", root, err)
	}
	ignored := loadIgnoreMatcher(absRoot)

	var found []entities.DependencyFileDescriptor
	walkErr := filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			logger.Debugf("Skipping %s: %v", path, err)
			return nil
		}

		if path == absRoot {
			return nil
		}
		if entry.IsDir() && skippedDirs[entry.Name()] {
			return filepath.SkipDir
		}
		if ignored.Match(relativeParts(absRoot, path), entry.IsDir()) {
			logger.Debugf("Skipping ignored %s", path)
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		depType, kind, ok := it.Classify(path)
		if !ok {
			return nil
		}

		logger.Debugf("Detected %s %s (%s)", kind, path, depType)
		found = append(found, entities.DependencyFileDescriptor{Path: path, Type: depType, Kind: kind})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, walkErr)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

// loadIgnoreMatcher reads the .gitignore files under root and
// .git/info/exclude. Unreadable patterns leave nothing ignored.
func loadIgnoreMatcher(root string) gitignore.Matcher {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		logger.Warnf("Could not read the ignore files under %s, detecting every file: %v", root, err)
		return gitignore.NewMatcher(nil)
	}
	return gitignore.NewMatcher(patterns)
}

func relativeParts(root, path string) []string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return []string{filepath.Base(path)}
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

// Classify matches the base name of path against the known dependency files.
// Names that need it are confirmed by reading the file.
func (it *FilesystemDetector) Classify(path string) (string, entities.DepfileKind, bool) {
	name := filepath.Base(path)
	for _, r := range rules {
		if !r.match(name) {
			continue
		}

		sniff := r.sniff
		if sniff == nil {
			sniff = acceptAll
		}
		depType, ok := sniff(path, r.depType)
		if !ok {
			logger.Debugf("%s looks like a %s %s but its content does not match", path, r.depType, r.kind)
			return "", "", false
		}
		return depType, r.kind, true
	}
	return "", "", false
}
