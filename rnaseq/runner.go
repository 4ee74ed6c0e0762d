package rnaseq

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Runner executes an external tool. The default runner shells out with
// os/exec; tests substitute a recording implementation.
type Runner interface {
	// Output runs the tool and returns its captured stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Stream runs the tool writing its stdout to w; stderr is discarded.
	Stream(ctx context.Context, w io.Writer, name string, args ...string) error
}

type execRunner struct{}

var _ Runner = execRunner{}

func (execRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "rnaseq: %s exited with an error", name)
	}
	return stdout.String(), nil
}

func (execRunner) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "rnaseq: %s exited with an error", name)
	}
	return nil
}
