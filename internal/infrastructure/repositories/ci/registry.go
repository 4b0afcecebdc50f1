package ci

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

// PlatformFactory builds an adapter bound to an environment and a repository.
type PlatformFactory func(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) repositories.CIPlatformRepository

// PlatformRegistry keeps the adapters in probing order.
type PlatformRegistry struct {
	names     []string
	factories map[string]PlatformFactory
}

// NewPlatformRegistry creates an empty registry.
func NewPlatformRegistry() *PlatformRegistry {
	return &PlatformRegistry{factories: make(map[string]PlatformFactory)}
}

// NewDefaultPlatformRegistry registers every adapter, most specific first.
func NewDefaultPlatformRegistry() *PlatformRegistry {
	reg := NewPlatformRegistry()
	reg.Register(preCommitName, NewPreCommitPlatform)
	reg.Register(gitHubName, NewGitHubPlatform)
	reg.Register(gitLabName, NewGitLabPlatform)
	reg.Register(azureName, NewAzurePipelinesPlatform)
	reg.Register(bitbucketName, NewBitbucketPlatform)
	reg.Register(jenkinsName, NewJenkinsPlatform)
	reg.Register(noneName, NewNonePlatform)
	return reg
}

// Register appends a factory; registering a name again replaces it in place.
func (r *PlatformRegistry) Register(name string, factory PlatformFactory) {
	if _, exists := r.factories[name]; !exists {
		r.names = append(r.names, name)
	}
	r.factories[name] = factory
}

// Names returns the registered names in probing order.
func (r *PlatformRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// Detect returns the first adapter whose environment is present.
func (r *PlatformRegistry) Detect(
	env Getenv,
	vcs repositories.VersionControlRepository,
	opts ...Option,
) (repositories.CIPlatformRepository, error) {
	for _, name := range r.names {
		candidate := r.factories[name](env, vcs, opts...)
		if candidate.DetectEnvironment() {
			logger.Debugf("Detected CI platform %q", candidate.Name())
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("no CI platform matched the environment (tried %v)", r.names)
}

// DetectPlatform probes the process environment.
func (r *PlatformRegistry) DetectPlatform(
	vcs repositories.VersionControlRepository,
) (repositories.CIPlatformRepository, error) {
	return r.Detect(os.Getenv, vcs)
}
