// Package vcs retrieves the changed-file set from version control.
//
// The resolver treats changed files as an opaque list of repository-relative
// paths; this package is one pluggable source of that list (git diff against
// a base ref), with an explicit comma-separated list as the other.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/moolen/buildscope/internal/logging"
)

// DefaultBaseRef is the diff base when none is configured.
const DefaultBaseRef = "main"

// commandRunner abstracts subprocess execution for testing.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// GitClient reads changed files from the git command line
type GitClient struct {
	runner commandRunner
	logger *logging.Logger
}

// NewGitClient creates a git-backed changed-file source
func NewGitClient() *GitClient {
	return &GitClient{
		runner: execRunner{},
		logger: logging.GetLogger("vcs"),
	}
}

// ChangedFiles returns the repository-relative paths changed between baseRef
// and the current working state. An empty result is a normal outcome.
func (c *GitClient) ChangedFiles(ctx context.Context, baseRef string) ([]string, error) {
	if baseRef == "" {
		baseRef = DefaultBaseRef
	}

	rangeSpec := fmt.Sprintf("%s...HEAD", baseRef)
	stdout, stderr, err := c.runner.Run(ctx, "git", "diff", "--name-only", rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("git diff %s failed: %s: %w", rangeSpec, strings.TrimSpace(string(stderr)), err)
	}

	files := splitLines(stdout)
	c.logger.Debug("git diff %s reported %d changed files", rangeSpec, len(files))
	return files, nil
}

// SplitFileList parses an explicit comma-separated file list into trimmed,
// non-empty paths.
func SplitFileList(list string) []string {
	var files []string
	for _, part := range strings.Split(list, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			files = append(files, trimmed)
		}
	}
	return files
}

func splitLines(out []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
