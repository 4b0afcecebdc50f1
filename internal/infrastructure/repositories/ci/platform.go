// Package ci holds one adapter per continuous-integration platform. Each
// adapter knows how to recognise its environment, which commit to diff
// against, how to label the analysis and where to publish the report.
package ci

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/domain/repositories"
)

const (
	headRef      = "HEAD"
	shortSHALen  = 7
	zeroSHAChars = "0"
)

var errMissingContext = errors.New("missing CI context")

// Getenv reads an environment variable; os.Getenv in production.
type Getenv func(key string) string

// Option customises an adapter.
type Option func(*platform)

// WithOutput redirects reports that are printed instead of posted.
func WithOutput(out io.Writer) Option {
	return func(p *platform) { p.out = out }
}

// platform carries what every adapter needs.
type platform struct {
	env Getenv
	vcs repositories.VersionControlRepository
	out io.Writer
}

func newPlatform(env Getenv, vcs repositories.VersionControlRepository, opts []Option) platform {
	if env == nil {
		env = os.Getenv
	}
	p := platform{env: env, vcs: vcs, out: os.Stdout}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// requireEnv returns the value of key or an error naming the variable.
func (p platform) requireEnv(key string) (string, error) {
	value := p.env(key)
	if value == "" {
		return "", fmt.Errorf("%w: environment variable %s is not set", errMissingContext, key)
	}
	return value, nil
}

// remoteBranchAncestor is the merge-base of HEAD and <remote>/<branch>.
func (p platform) remoteBranchAncestor(ctx context.Context, branch string) (string, error) {
	remote, err := p.vcs.RemoteName(ctx)
	if err != nil {
		return "", err
	}
	branch = strings.TrimPrefix(branch, "refs/heads/")
	return p.vcs.MergeBase(ctx, remote+"/"+branch, headRef)
}

// defaultBranchAncestor is the merge-base of HEAD and the remote's default branch.
func (p platform) defaultBranchAncestor(ctx context.Context) (string, error) {
	remote, err := p.vcs.RemoteName(ctx)
	if err != nil {
		return "", err
	}
	branch, err := p.vcs.DefaultBranchName(ctx, remote)
	if err != nil {
		return "", err
	}
	return p.vcs.MergeBase(ctx, branch, headRef)
}

// headLabel describes HEAD as <branch>_<sha> from the local repository.
func (p platform) headLabel() string {
	info, err := p.vcs.HeadInfo()
	if err != nil {
		logger.Debugf("Could not read HEAD for the label: %v", err)
		return "unknown"
	}
	branch := info.Branch
	if branch == "" {
		branch = "detached"
	}
	return branch + "_" + shortSHA(info.Hash)
}

func (p platform) print(report string) error {
	if _, err := fmt.Fprintln(p.out, report); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > shortSHALen {
		return sha[:shortSHALen]
	}
	return sha
}

// isNullSHA reports whether sha is missing or the all-zero placeholder
// platforms send for new branches.
func isNullSHA(sha string) bool {
	return strings.Trim(sha, zeroSHAChars) == ""
}

// commentCache remembers the body of the latest report comment so the same
// report is not posted twice. One cache belongs to one adapter instance.
type commentCache struct {
	loaded bool
	body   string
}

// isDuplicate loads the latest report comment once and compares it with report.
func (c *commentCache) isDuplicate(
	ctx context.Context,
	latest func(ctx context.Context) (string, error),
	report string,
) (bool, error) {
	if !c.loaded {
		body, err := latest(ctx)
		if err != nil {
			return false, err
		}
		c.body = body
		c.loaded = true
	}
	return c.body == report, nil
}

func (c *commentCache) remember(report string) {
	c.body = report
	c.loaded = true
}

func isReport(body string) bool {
	return strings.Contains(body, entities.ReportMarker)
}
