// Package process runs external commands and captures their output as
// structured errors.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depgate/internal/domain/entities"
)

// Options describes a single invocation.
type Options struct {
	Name  string
	Args  []string
	Dir   string
	Stdin io.Reader
}

// Run executes the command and returns its stdout. Any failure, including a
// non-zero exit, is returned as *entities.CommandError with both streams.
func Run(ctx context.Context, opts Options) (string, error) {
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	commandLine := append([]string{opts.Name}, opts.Args...)
	logger.Debugf("Running `%s`", strings.Join(commandLine, " "))

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.String(), &entities.CommandError{
			Args:     commandLine,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	if stderr.Len() > 0 {
		logger.Debugf("stderr of `%s`:\n%s", opts.Name, stderr.String())
	}
	return stdout.String(), nil
}

// ExitCode returns the exit code carried by err, or -1 when err does not
// come from Run.
func ExitCode(err error) int {
	var cmdErr *entities.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}
