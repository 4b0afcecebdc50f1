package repositories

import "github.com/rios0rios0/depgate/internal/domain/entities"

// DepfileDetectorRepository finds dependency files under a directory.
type DepfileDetectorRepository interface {
	// Detect returns every recognised dependency file under root, with
	// absolute paths, a type and a kind.
	Detect(root string) ([]entities.DependencyFileDescriptor, error)

	// Classify returns the type and kind of a well-known file name.
	Classify(path string) (depType string, kind entities.DepfileKind, ok bool)
}
