// Package impact computes the set of build targets affected by a changed
// file set, by querying file owners and their immediate reverse dependents
// through the graph engine.
//
// The closure is deliberately breadth-limited: only direct owners and their
// depth-bounded reverse dependents are included. Deeper reverse-dependency
// chains are assumed to be captured by the build system's own target-level
// caching, and widening the search explodes query cost on large graphs. The
// depth is configurable rather than fixed.
package impact

import (
	"context"
	"sort"
	"sync"

	"github.com/moolen/buildscope/internal/bazel"
	"github.com/moolen/buildscope/internal/logging"
	"golang.org/x/sync/errgroup"
)

// GraphQuerier is the narrow seam into the graph engine the resolver
// depends on. *bazel.Client satisfies it; tests supply a fake.
type GraphQuerier interface {
	// Owners returns the targets that declare filePath as a direct input.
	Owners(ctx context.Context, filePath string) ([]string, error)
	// Rdeps returns the targets within universe that depend on target
	// within depth hops.
	Rdeps(ctx context.Context, universe, target string, depth int) ([]string, error)
	// Deps returns the targets reachable from target within depth hops,
	// including target itself.
	Deps(ctx context.Context, target string, depth int) ([]string, error)
}

const (
	// DefaultUniverse is the universe scope for reverse-dependency searches.
	DefaultUniverse = "//..."
	// DefaultRdepsDepth bounds the reverse-dependency hop count.
	DefaultRdepsDepth = 1
	// DefaultWorkers bounds concurrent changed-file lookups.
	DefaultWorkers = 4
)

// Options configures a Resolver. Zero values fall back to the defaults above
// and to DefaultTestMatcher.
type Options struct {
	Universe   string
	RdepsDepth int
	Workers    int
	Matcher    TestMatcher
}

// Resolver maps changed files to affected targets
type Resolver struct {
	graph    GraphQuerier
	universe string
	depth    int
	workers  int
	matcher  TestMatcher
	logger   *logging.Logger
}

// NewResolver creates a resolver over the given graph querier
func NewResolver(graph GraphQuerier, opts Options) *Resolver {
	if opts.Universe == "" {
		opts.Universe = DefaultUniverse
	}
	if opts.RdepsDepth <= 0 {
		opts.RdepsDepth = DefaultRdepsDepth
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Matcher == nil {
		opts.Matcher = DefaultTestMatcher
	}
	return &Resolver{
		graph:    graph,
		universe: opts.Universe,
		depth:    opts.RdepsDepth,
		workers:  opts.Workers,
		matcher:  opts.Matcher,
		logger:   logging.GetLogger("impact.resolver"),
	}
}

// ResolveAffected computes the targets affected by the changed files: the
// union of every file's direct owners and each owner's reverse dependents
// within the configured depth. The result is deduplicated and sorted.
//
// Files not tracked by the graph engine contribute nothing: their
// GraphUnavailable outcome is logged and skipped, because docs and unrelated
// configs must not abort the whole computation. Any other error aborts.
//
// File lookups run concurrently up to the configured worker bound; the
// affected set is merge-guarded, and insertion order is irrelevant since the
// result is a set.
func (r *Resolver) ResolveAffected(ctx context.Context, changedFiles []string) ([]string, error) {
	affected := make(map[string]struct{})
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, filePath := range changedFiles {
		filePath := filePath
		g.Go(func() error {
			owners, err := r.graph.Owners(ctx, filePath)
			if err != nil {
				if bazel.IsGraphUnavailable(err) {
					r.logger.Debug("file %s is not tracked by the graph engine, skipping", filePath)
					return nil
				}
				return err
			}

			for _, owner := range owners {
				rdeps, err := r.graph.Rdeps(ctx, r.universe, owner, r.depth)
				if err != nil {
					return err
				}

				mu.Lock()
				affected[owner] = struct{}{}
				for _, rdep := range rdeps {
					affected[rdep] = struct{}{}
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(affected))
	for label := range affected {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	r.logger.InfoWithFields("resolved affected targets",
		logging.Field("changed_files", len(changedFiles)),
		logging.Field("affected", len(labels)),
	)
	return labels, nil
}

// FindTestTargets filters targets down to the test subset using the
// resolver's matcher. Idempotent: filtering a filtered set is a no-op.
func (r *Resolver) FindTestTargets(targets []string) []string {
	var tests []string
	for _, target := range targets {
		if r.matcher(target) {
			tests = append(tests, target)
		}
	}
	return tests
}
