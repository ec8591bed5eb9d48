// Package bazel wraps the external Bazel query engine behind a narrow,
// testable client.
//
// All graph lookups (owners of a file, deps, rdeps, kind queries) go through
// this package. Process failures are translated into the typed
// GraphUnavailableError rather than escaping as raw exec errors, because
// "file not tracked by the graph" is an expected outcome for callers, not an
// exceptional one.
package bazel

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"github.com/moolen/buildscope/internal/logging"
)

// DefaultBinary is the query engine binary used when none is configured.
const DefaultBinary = "bazel"

// MinSupportedVersion is the oldest Bazel release the query expressions in
// this package are known to work with.
const MinSupportedVersion = "5.0.0"

// Client executes Bazel queries and parses results.
// Results are never cached: every call is a fresh query against the current
// graph state.
type Client struct {
	binary string
	runner commandRunner
	logger *logging.Logger
}

// NewClient creates a client for the given Bazel binary path.
// An empty binary falls back to DefaultBinary.
func NewClient(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{
		binary: binary,
		runner: execRunner{},
		logger: logging.GetLogger("bazel"),
	}
}

// Query evaluates a query expression and returns the matching target labels,
// deduplicated but otherwise in engine order. Callers must treat the result
// as a set.
func (c *Client) Query(ctx context.Context, expression string) ([]string, error) {
	return c.run(ctx, "query", expression)
}

// CQuery evaluates a configured query (cquery) expression.
func (c *Client) CQuery(ctx context.Context, expression string) ([]string, error) {
	return c.run(ctx, "cquery", expression)
}

// Deps returns all targets reachable from target by outgoing dependency
// edges within depth hops. The result INCLUDES target itself; callers
// counting direct dependencies must exclude it explicitly.
func (c *Client) Deps(ctx context.Context, target string, depth int) ([]string, error) {
	return c.Query(ctx, fmt.Sprintf("deps(%s, %d)", target, depth))
}

// Rdeps returns all targets within universe that depend on target within
// depth hops.
func (c *Client) Rdeps(ctx context.Context, universe, target string, depth int) ([]string, error) {
	return c.Query(ctx, fmt.Sprintf("rdeps(%s, %s, %d)", universe, target, depth))
}

// Kind returns all targets under pattern whose rule kind matches kind.
func (c *Client) Kind(ctx context.Context, kind, pattern string) ([]string, error) {
	return c.Query(ctx, fmt.Sprintf("kind(%q, %s)", kind, pattern))
}

// Owners returns the targets that declare filePath as a direct input.
// A file that is not tracked by the graph engine yields a
// GraphUnavailableError, which callers should treat as "skip this file".
func (c *Client) Owners(ctx context.Context, filePath string) ([]string, error) {
	return c.Query(ctx, fmt.Sprintf("owner(%q)", filePath))
}

// Version probes the Bazel binary and returns its release version.
// Unreachable or unparseable binaries yield a GraphUnavailableError.
func (c *Client) Version(ctx context.Context) (*goversion.Version, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.binary, "--version")
	if err != nil {
		return nil, &GraphUnavailableError{
			Expression: "--version",
			Stderr:     strings.TrimSpace(string(stderr)),
			Cause:      err,
		}
	}

	// Output looks like "bazel 7.1.0" (release builds may append a suffix).
	raw := strings.TrimSpace(string(stdout))
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return nil, fmt.Errorf("unexpected version output %q", raw)
	}

	v, err := goversion.NewVersion(strings.TrimPrefix(fields[len(fields)-1], "v"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse version from %q: %w", raw, err)
	}
	return v, nil
}

// CheckVersion returns an error if the engine version is older than
// MinSupportedVersion. A probe failure is returned as-is so callers can
// decide whether an unreachable binary is fatal.
func (c *Client) CheckVersion(ctx context.Context) error {
	v, err := c.Version(ctx)
	if err != nil {
		return err
	}

	minimum := goversion.Must(goversion.NewVersion(MinSupportedVersion))
	if v.LessThan(minimum) {
		return fmt.Errorf("bazel %s is older than the minimum supported version %s", v, minimum)
	}

	c.logger.Debug("bazel version %s", v)
	return nil
}

// run executes a query verb and maps failures to GraphUnavailableError.
func (c *Client) run(ctx context.Context, verb, expression string) ([]string, error) {
	c.logger.Debug("running %s %s %s", c.binary, verb, expression)

	stdout, stderr, err := c.runner.Run(ctx, c.binary, verb, expression, "--output=label")
	if err != nil {
		return nil, &GraphUnavailableError{
			Expression: expression,
			Stderr:     strings.TrimSpace(string(stderr)),
			Cause:      err,
		}
	}

	labels := parseLabels(stdout)
	c.logger.DebugWithFields("query finished",
		logging.Field("expression", expression),
		logging.Field("labels", len(labels)),
	)
	return labels, nil
}

// parseLabels splits newline-delimited engine output into trimmed,
// deduplicated labels, preserving engine order.
func parseLabels(out []byte) []string {
	var labels []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		label := strings.TrimSpace(scanner.Text())
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}

	return labels
}
