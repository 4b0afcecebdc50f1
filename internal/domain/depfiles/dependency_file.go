// Package depfiles holds the change-detection core: one DependencyFile per
// detected manifest or lockfile, knowing its current packages, its packages
// at the common ancestor commit, and the difference between the two.
package depfiles

import (
	"context"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

const parseRemediation = "Specify the dependency file type explicitly with `--depfile <path>:<type>` " +
	"(or the `depfiles` setting), or make sure the file is valid for that type."

// Collaborators are the external systems a DependencyFile talks to.
type Collaborators struct {
	Analyzer       repositories.AnalyzerRepository
	VCS            repositories.VersionControlRepository
	RepoRoot       string
	CommonAncestor string // empty when there is no prior version to compare with
}

// historyStrategy retrieves the packages of a file at the common ancestor.
type historyStrategy interface {
	kind() entities.DepfileKind
	previousDeps(ctx context.Context, file *DependencyFile) ([]entities.PackageDescriptor, error)
	// gatedOnChange tells whether an unchanged file can skip the difference.
	gatedOnChange() bool
}

// memo is a write-once result guarded by an explicit computed flag.
type memo struct {
	computed bool
	deps     []entities.PackageDescriptor
	err      error
}

func (m *memo) set(deps []entities.PackageDescriptor, err error) {
	m.computed = true
	m.deps = deps
	m.err = err
}

// DependencyFile owns the current and historical dependency sets of one
// manifest or lockfile. The protocol is: construct, SetChanged, then query.
// Derived sets are computed once; instances are not safe for concurrent use.
type DependencyFile struct {
	path      string
	root      string
	relPath   string
	ecosystem string
	ancestor  string
	analyzer  repositories.AnalyzerRepository
	vcs       repositories.VersionControlRepository
	history   historyStrategy

	changed *bool

	current memo
	base    memo
	added   memo
}

// New builds the variant matching the descriptor's kind.
func New(descriptor entities.DependencyFileDescriptor, collab Collaborators) (*DependencyFile, error) {
	switch descriptor.Kind {
	case entities.KindLockfile:
		return NewLockfile(descriptor, collab)
	case entities.KindManifest:
		return NewManifest(descriptor, collab)
	default:
		return nil, fmt.Errorf("unknown dependency file kind %q for %s", descriptor.Kind, descriptor.Path)
	}
}

// NewLockfile builds a DependencyFile that reads its previous version from a single blob.
func NewLockfile(descriptor entities.DependencyFileDescriptor, collab Collaborators) (*DependencyFile, error) {
	return newDependencyFile(descriptor, collab, lockfileHistory{})
}

// NewManifest builds a DependencyFile that reads its previous version from a
// historical worktree.
func NewManifest(descriptor entities.DependencyFileDescriptor, collab Collaborators) (*DependencyFile, error) {
	return newDependencyFile(descriptor, collab, manifestHistory{})
}

func newDependencyFile(
	descriptor entities.DependencyFileDescriptor,
	collab Collaborators,
	history historyStrategy,
) (*DependencyFile, error) {
	if descriptor.IsAuto() {
		return nil, fmt.Errorf("dependency file %s has no resolved type", descriptor.Path)
	}

	path, err := filepath.Abs(descriptor.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", descriptor.Path, err)
	}
	root, err := filepath.Abs(collab.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid repository root %q: %w", collab.RepoRoot, err)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, fmt.Errorf("%s is not inside the repository %s: %w", path, root, err)
	}

	return &DependencyFile{
		path:      path,
		root:      root,
		relPath:   filepath.ToSlash(rel),
		ecosystem: descriptor.Type,
		ancestor:  collab.CommonAncestor,
		analyzer:  collab.Analyzer,
		vcs:       collab.VCS,
		history:   history,
	}, nil
}

// Path returns the absolute path of the file.
func (it *DependencyFile) Path() string { return it.path }

// RelativePath returns the slash-separated path relative to the repository root.
func (it *DependencyFile) RelativePath() string { return it.relPath }

// Ecosystem returns the declared or detected type passed to the parser.
func (it *DependencyFile) Ecosystem() string { return it.ecosystem }

// Kind returns whether this is a lockfile or a manifest.
func (it *DependencyFile) Kind() entities.DepfileKind { return it.history.kind() }

// CommonAncestorCommit returns the revision used as the diff base.
func (it *DependencyFile) CommonAncestorCommit() string { return it.ancestor }

// IsChanged returns the change flag and whether it has been set.
func (it *DependencyFile) IsChanged() (changed, known bool) {
	if it.changed == nil {
		return false, false
	}
	return *it.changed, true
}

// SetChanged records whether the file differs from the common ancestor.
func (it *DependencyFile) SetChanged(changed bool) {
	it.changed = &changed
}

// CurrentDeps returns the packages of the file as it is on disk, parsed from
// the repository root. A parse failure is returned as *entities.ParseError.
func (it *DependencyFile) CurrentDeps(ctx context.Context) ([]entities.PackageDescriptor, error) {
	if it.current.computed {
		return it.current.deps, it.current.err
	}

	deps, err := it.parse(ctx, it.path, it.root)
	if err != nil {
		it.current.set(nil, &entities.ParseError{
			Path:        it.path,
			Type:        it.ecosystem,
			Remediation: parseRemediation,
			Err:         err,
		})
		return nil, it.current.err
	}

	it.current.set(deps, nil)
	logger.Debugf("Found %d current dependencies in %s", len(deps), it.relPath)
	return it.current.deps, nil
}

// BaseDeps returns the packages of the file at the common ancestor commit.
// It is empty when there is no ancestor, the file did not exist there, or
// the previous version could not be read or parsed.
func (it *DependencyFile) BaseDeps(ctx context.Context) []entities.PackageDescriptor {
	if it.base.computed {
		return it.base.deps
	}

	if it.ancestor == "" {
		logger.Debugf("No common ancestor commit, assuming %s has no previous dependencies", it.relPath)
		it.base.set([]entities.PackageDescriptor{}, nil)
		return it.base.deps
	}

	deps, err := it.history.previousDeps(ctx, it)
	if err != nil {
		logger.Warnf(
			"Could not get the dependencies of %s at %s, assuming there were none: %v",
			it.relPath, it.ancestor, err,
		)
		deps = nil
	}

	it.base.set(entities.SortedUnique(deps), nil)
	logger.Debugf("Found %d base dependencies in %s at %s", len(it.base.deps), it.relPath, it.ancestor)
	return it.base.deps
}

// NewDeps returns the packages introduced since the common ancestor. For a
// lockfile known to be unchanged it is empty without any parsing; manifests
// always compute it because sibling files can change their resolution.
func (it *DependencyFile) NewDeps(ctx context.Context) ([]entities.PackageDescriptor, error) {
	if it.added.computed {
		return it.added.deps, it.added.err
	}

	changed, known := it.IsChanged()
	if !known {
		logger.Warnf(
			"New dependencies of %s requested before its change status was set; the result may be meaningless",
			it.relPath,
		)
	}

	if known && !changed && it.history.gatedOnChange() {
		logger.Debugf("%s is unchanged, skipping the dependency difference", it.relPath)
		it.added.set([]entities.PackageDescriptor{}, nil)
		return it.added.deps, nil
	}

	current, err := it.CurrentDeps(ctx)
	if err != nil {
		it.added.set(nil, err)
		return nil, err
	}

	it.added.set(entities.Difference(current, it.BaseDeps(ctx)), nil)
	logger.Debugf("Found %d new dependencies in %s", len(it.added.deps), it.relPath)
	return it.added.deps, nil
}

// parse runs the external parser and keeps the package descriptors sorted and unique.
func (it *DependencyFile) parse(ctx context.Context, path, workDir string) ([]entities.PackageDescriptor, error) {
	parsed, err := it.analyzer.Parse(ctx, it.ecosystem, path, workDir)
	if err != nil {
		return nil, err
	}

	deps := make([]entities.PackageDescriptor, 0, len(parsed))
	for _, pkg := range parsed {
		deps = append(deps, pkg.PackageDescriptor)
	}
	return entities.SortedUnique(deps), nil
}
