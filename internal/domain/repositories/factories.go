package repositories

// VersionControlFactory opens the repository that contains dir.
type VersionControlFactory func(dir string) VersionControlRepository

// AnalyzerFactory binds an AnalyzerRepository to an executable.
type AnalyzerFactory func(binary string) AnalyzerRepository

// CIPlatformDetector selects the adapter for the running environment.
type CIPlatformDetector interface {
	DetectPlatform(vcs VersionControlRepository) (CIPlatformRepository, error)
}
