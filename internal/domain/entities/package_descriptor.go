package entities

import "sort"

// PackageDescriptor identifies a single dependency. Two descriptors are the
// same dependency only when every field matches exactly; no version
// semantics are applied.
type PackageDescriptor struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Ecosystem string `json:"type"`
}

// String returns a human-readable representation.
func (p PackageDescriptor) String() string {
	return p.Name + "@" + p.Version + " (" + p.Ecosystem + ")"
}

// Less orders descriptors by the (Name, Version, Ecosystem) tuple.
func (p PackageDescriptor) Less(other PackageDescriptor) bool {
	if p.Name != other.Name {
		return p.Name < other.Name
	}
	if p.Version != other.Version {
		return p.Version < other.Version
	}
	return p.Ecosystem < other.Ecosystem
}

// SortedUnique collapses duplicates and returns the descriptors in ascending
// order. The result is never nil.
func SortedUnique(pkgs []PackageDescriptor) []PackageDescriptor {
	seen := make(map[PackageDescriptor]struct{}, len(pkgs))
	result := make([]PackageDescriptor, 0, len(pkgs))
	for _, pkg := range pkgs {
		if _, ok := seen[pkg]; ok {
			continue
		}
		seen[pkg] = struct{}{}
		result = append(result, pkg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Less(result[j])
	})
	return result
}

// Difference returns the sorted set of descriptors in current that are not in base.
func Difference(current, base []PackageDescriptor) []PackageDescriptor {
	baseSet := make(map[PackageDescriptor]struct{}, len(base))
	for _, pkg := range base {
		baseSet[pkg] = struct{}{}
	}

	var added []PackageDescriptor
	for _, pkg := range current {
		if _, ok := baseSet[pkg]; !ok {
			added = append(added, pkg)
		}
	}
	return SortedUnique(added)
}
