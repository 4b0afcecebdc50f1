package repositories

import "context"

// CIPlatformRepository is the capability set of a CI environment.
type CIPlatformRepository interface {
	// Name returns the platform identifier (e.g. "github", "gitlab").
	Name() string

	// DetectEnvironment returns true when running inside this platform.
	DetectEnvironment() bool

	// CommonAncestorCommit returns the revision new dependencies are computed
	// against, or "" when there is none.
	CommonAncestorCommit(ctx context.Context) (string, error)

	// Label names the analysis submitted for this run.
	Label() string

	// PostReport publishes the report (PR comment or console).
	PostReport(ctx context.Context, report string) error
}
