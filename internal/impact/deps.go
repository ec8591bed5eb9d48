package impact

import (
	"context"
	"fmt"
)

// transitiveDepsDepth is the hop bound used for "all" dependencies.
// Effectively unbounded for real-world graphs.
const transitiveDepsDepth = 100

// DependencyReport summarizes the shape of a target's dependency tree.
type DependencyReport struct {
	Target string `json:"target"`

	// TotalDependencies is the size of the depth-bounded transitive
	// dependency set, including the target itself.
	TotalDependencies int `json:"total_dependencies"`

	// DirectDependencies is the size of the depth-1 dependency set with the
	// target itself excluded.
	DirectDependencies int `json:"direct_dependencies"`

	// MaxDepth is an approximation only: it reports the transitive
	// dependency COUNT, not a true longest-path depth. Downstream consumers
	// depend on this historical behavior, so it is preserved as-is.
	MaxDepth int `json:"max_depth"`
}

// AnalyzeDependencies reports breadth metrics for a target's dependency tree.
func (r *Resolver) AnalyzeDependencies(ctx context.Context, target string) (*DependencyReport, error) {
	allDeps, err := r.graph.Deps(ctx, target, transitiveDepsDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitive dependencies of %s: %w", target, err)
	}

	directDeps, err := r.graph.Deps(ctx, target, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to query direct dependencies of %s: %w", target, err)
	}

	direct := len(directDeps) - 1 // deps(t, 1) includes t itself
	if direct < 0 {
		direct = 0
	}

	return &DependencyReport{
		Target:             target,
		TotalDependencies:  len(allDeps),
		DirectDependencies: direct,
		MaxDepth:           len(allDeps),
	}, nil
}
