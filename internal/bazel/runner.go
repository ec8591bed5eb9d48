package bazel

import (
	"bytes"
	"context"
	"os/exec"
)

// commandRunner abstracts subprocess execution so the client can be tested
// with a fake instead of spawning a real Bazel process.
type commandRunner interface {
	// Run executes the named binary with args and returns stdout, stderr
	// and the process error (non-nil on non-zero exit).
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var outBuf, errBuf bytes.Buffer

	// name is the configured bazel binary path
	// #nosec G204 -- The query engine binary is intentionally user-configurable
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}
