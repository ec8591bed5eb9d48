package impact

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/moolen/buildscope/internal/bazel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGraph is an in-memory GraphQuerier. Files absent from owners are
// reported untracked via GraphUnavailableError, matching the real engine.
type fakeGraph struct {
	mu     sync.Mutex
	owners map[string][]string
	rdeps  map[string][]string
	deps   map[int]map[string][]string

	rdepsCalls []string
	failAll    error
}

func (f *fakeGraph) Owners(_ context.Context, filePath string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	owners, ok := f.owners[filePath]
	if !ok {
		return nil, &bazel.GraphUnavailableError{
			Expression: "owner(" + filePath + ")",
			Stderr:     "no such target",
			Cause:      errors.New("exit status 7"),
		}
	}
	return owners, nil
}

func (f *fakeGraph) Rdeps(_ context.Context, universe, target string, depth int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rdepsCalls = append(f.rdepsCalls, target)
	return f.rdeps[target], nil
}

func (f *fakeGraph) Deps(_ context.Context, target string, depth int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deps[depth][target], nil
}

func TestResolveAffected(t *testing.T) {
	graph := &fakeGraph{
		owners: map[string][]string{
			"app/service.go": {"//app:lib"},
		},
		rdeps: map[string][]string{
			"//app:lib": {"//app:lib", "//app:lib_tests"},
		},
	}
	r := NewResolver(graph, Options{})

	affected, err := r.ResolveAffected(context.Background(), []string{"app/service.go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"//app:lib", "//app:lib_tests"}, affected)

	tests := r.FindTestTargets(affected)
	assert.Equal(t, []string{"//app:lib_tests"}, tests)
}

func TestResolveAffected_EmptyChangeSet(t *testing.T) {
	r := NewResolver(&fakeGraph{}, Options{})
	affected, err := r.ResolveAffected(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, affected)
}

func TestResolveAffected_UntrackedFileIsSkipped(t *testing.T) {
	graph := &fakeGraph{
		owners: map[string][]string{
			"app/service.go": {"//app:lib"},
		},
		rdeps: map[string][]string{
			"//app:lib": {"//app:bin"},
		},
	}
	r := NewResolver(graph, Options{})

	affected, err := r.ResolveAffected(context.Background(), []string{
		"docs/readme.md", // untracked, contributes nothing
		"app/service.go",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"//app:bin", "//app:lib"}, affected)
}

func TestResolveAffected_ContainsOwners(t *testing.T) {
	graph := &fakeGraph{
		owners: map[string][]string{
			"a.go": {"//a:lib"},
			"b.go": {"//b:lib", "//b:bin"},
		},
		rdeps: map[string][]string{},
	}
	r := NewResolver(graph, Options{Workers: 2})

	affected, err := r.ResolveAffected(context.Background(), []string{"a.go", "b.go"})
	require.NoError(t, err)

	// Every successfully resolved owner must be in the affected set.
	for _, owner := range []string{"//a:lib", "//b:lib", "//b:bin"} {
		assert.Contains(t, affected, owner)
	}
}

func TestResolveAffected_QueriesRdepsPerOwner(t *testing.T) {
	graph := &fakeGraph{
		owners: map[string][]string{
			"a.go": {"//a:lib", "//a:bin"},
		},
		rdeps: map[string][]string{},
	}
	r := NewResolver(graph, Options{})

	_, err := r.ResolveAffected(context.Background(), []string{"a.go"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"//a:lib", "//a:bin"}, graph.rdepsCalls)
}

func TestResolveAffected_EngineFailureAborts(t *testing.T) {
	graph := &fakeGraph{failAll: errors.New("query engine crashed")}
	r := NewResolver(graph, Options{})

	_, err := r.ResolveAffected(context.Background(), []string{"a.go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query engine crashed")
}

func TestFindTestTargets_Idempotent(t *testing.T) {
	r := NewResolver(&fakeGraph{}, Options{})
	targets := []string{"//app:lib", "//app:lib_test", "//app:integration_tests", "//app:bin"}

	once := r.FindTestTargets(targets)
	twice := r.FindTestTargets(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"//app:lib_test", "//app:integration_tests"}, once)
}

func TestDefaultTestMatcher(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{label: "//app:lib_test", want: true},
		{label: "//app:lib_tests", want: true},
		{label: "//app:unit_test_helpers", want: true}, // substring match, by convention
		{label: "//app:lib", want: false},
		{label: "//app:testdata", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultTestMatcher(tt.label))
		})
	}
}

func TestMatcherFromPatterns(t *testing.T) {
	m := MatcherFromPatterns([]string{".spec"}, []string{"_it"})
	assert.True(t, m("//app:lib.spec"))
	assert.True(t, m("//app:checkout_it"))
	assert.False(t, m("//app:lib_test")) // default convention replaced

	// No patterns falls back to the default convention.
	fallback := MatcherFromPatterns(nil, nil)
	assert.True(t, fallback("//app:lib_test"))
}

func TestAnalyzeDependencies(t *testing.T) {
	graph := &fakeGraph{
		deps: map[int]map[string][]string{
			100: {"//app:bin": {"//app:bin", "//app:lib", "//base:core", "//base:util"}},
			1:   {"//app:bin": {"//app:bin", "//app:lib"}},
		},
	}
	r := NewResolver(graph, Options{})

	report, err := r.AnalyzeDependencies(context.Background(), "//app:bin")
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalDependencies)
	assert.Equal(t, 1, report.DirectDependencies)
	// MaxDepth intentionally mirrors the transitive count, not a real depth.
	assert.Equal(t, report.TotalDependencies, report.MaxDepth)
}

func TestAnalyzeDependencies_EmptyDepsDoesNotGoNegative(t *testing.T) {
	graph := &fakeGraph{deps: map[int]map[string][]string{}}
	r := NewResolver(graph, Options{})

	report, err := r.AnalyzeDependencies(context.Background(), "//app:bin")
	require.NoError(t, err)
	assert.Equal(t, 0, report.DirectDependencies)
}

func TestTestCommand(t *testing.T) {
	assert.Equal(t, "", TestCommand("bazel", nil))
	assert.Equal(t,
		"bazel test //a:a_test //b:b_tests",
		TestCommand("bazel", []string{"//b:b_tests", "//a:a_test"}),
	)
}
