package entities

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AutoType marks a dependency file whose ecosystem type should be detected.
const AutoType = "auto"

// DepfileKind tells how the historical version of a dependency file is retrieved.
type DepfileKind string

const (
	// KindLockfile is a self-contained file with fully resolved versions.
	KindLockfile DepfileKind = "lockfile"
	// KindManifest is a loosely specified file that may need sibling files to resolve.
	KindManifest DepfileKind = "manifest"
)

// DependencyFileDescriptor identifies a single manifest or lockfile.
type DependencyFileDescriptor struct {
	Path string      `yaml:"path"`
	Type string      `yaml:"type"`
	Kind DepfileKind `yaml:"-"`
}

// ParseDescriptor parses the `path[:type]` form used by the --depfile flag.
func ParseDescriptor(raw string) (DependencyFileDescriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DependencyFileDescriptor{}, fmt.Errorf("empty dependency file entry")
	}

	path, depType := raw, AutoType
	if idx := strings.LastIndex(raw, ":"); idx > 0 && !isWindowsDrive(raw, idx) {
		path, depType = raw[:idx], raw[idx+1:]
	}
	if path == "" || depType == "" {
		return DependencyFileDescriptor{}, fmt.Errorf("invalid dependency file entry %q, expected path[:type]", raw)
	}

	return DependencyFileDescriptor{Path: path, Type: depType}, nil
}

func isWindowsDrive(raw string, idx int) bool {
	return idx == 1 && len(raw) > 2 && (raw[2] == '\\' || raw[2] == '/')
}

// IsAuto reports whether the type still has to be detected.
func (d DependencyFileDescriptor) IsAuto() bool {
	return d.Type == "" || d.Type == AutoType
}

// Resolve returns a copy of the descriptor with an absolute, cleaned path.
// Relative paths are taken from root.
func (d DependencyFileDescriptor) Resolve(root string) DependencyFileDescriptor {
	path := d.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	d.Path = filepath.Clean(path)
	if d.Type == "" {
		d.Type = AutoType
	}
	return d
}

// SameFile reports whether both descriptors point at the same file. An auto
// type on either side matches any declared type.
func (d DependencyFileDescriptor) SameFile(other DependencyFileDescriptor) bool {
	if filepath.Clean(d.Path) != filepath.Clean(other.Path) {
		return false
	}
	if d.IsAuto() || other.IsAuto() {
		return true
	}
	return d.Type == other.Type
}

// MergeDescriptors keeps every declared entry and appends the detected
// entries for paths that were not declared. A declared auto entry takes the
// type and kind of the detected entry for the same path.
func MergeDescriptors(declared, detected []DependencyFileDescriptor) []DependencyFileDescriptor {
	merged := make([]DependencyFileDescriptor, 0, len(declared)+len(detected))
	for _, entry := range declared {
		if indexOfFile(merged, entry) >= 0 {
			continue
		}
		merged = append(merged, entry)
	}

	declaredCount := len(merged)
	for _, entry := range detected {
		found := false
		for idx := range merged[:declaredCount] {
			if filepath.Clean(merged[idx].Path) != filepath.Clean(entry.Path) {
				continue
			}
			found = true
			if merged[idx].IsAuto() && !entry.IsAuto() {
				merged[idx].Type = entry.Type
				merged[idx].Kind = entry.Kind
			}
		}
		if !found {
			merged = append(merged, entry)
		}
	}
	return merged
}

func indexOfFile(entries []DependencyFileDescriptor, target DependencyFileDescriptor) int {
	for i, entry := range entries {
		if entry.SameFile(target) {
			return i
		}
	}
	return -1
}
