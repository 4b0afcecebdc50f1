package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAmbiguousRemote is returned when the repository has zero or several remotes.
	ErrAmbiguousRemote = errors.New("expected exactly one git remote")
	// ErrAmbiguousDiff is returned when git diff exits with neither 0 nor 1.
	ErrAmbiguousDiff = errors.New("unable to tell whether the path changed")
	// ErrNoDependencyFiles is returned when nothing could be analyzed.
	ErrNoDependencyFiles = errors.New("no dependency files found")
	// ErrAnalyzerTooOld is returned when the analyzer CLI is below the supported version.
	ErrAnalyzerTooOld = errors.New("analyzer CLI version is not supported")
)

// ShallowCheckoutHint is logged and attached to errors caused by missing history.
const ShallowCheckoutHint = "the checkout may be too shallow; fetch more history " +
	"(e.g. `fetch-depth: 0` on GitHub, `GIT_DEPTH: 0` on GitLab, `fetchDepth: 0` on Azure)"

// CommandError describes a failed external process invocation with its
// captured output.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "command `%s` failed with exit code %d", strings.Join(e.Args, " "), e.ExitCode)
	if out := strings.TrimSpace(e.Stdout); out != "" {
		sb.WriteString("\n  stdout: ")
		sb.WriteString(strings.ReplaceAll(out, "\n", "\n          "))
	}
	if out := strings.TrimSpace(e.Stderr); out != "" {
		sb.WriteString("\n  stderr: ")
		sb.WriteString(strings.ReplaceAll(out, "\n", "\n          "))
	}
	return sb.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// ParseError is returned when the current version of a dependency file
// cannot be parsed. It carries guidance for the user.
type ParseError struct {
	Path        string
	Type        string
	Remediation string
	Err         error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("failed to parse %s as %q: %v", e.Path, e.Type, e.Err)
	if e.Remediation != "" {
		msg += "\n" + e.Remediation
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
