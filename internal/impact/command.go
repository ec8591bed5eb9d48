package impact

import (
	"sort"
	"strings"
)

// TestCommand renders a single runnable command invoking the given test
// targets, sorted lexicographically. An empty target set yields an empty
// string: no tests need to run.
func TestCommand(binary string, targets []string) string {
	if len(targets) == 0 {
		return ""
	}

	sorted := make([]string, len(targets))
	copy(sorted, targets)
	sort.Strings(sorted)

	return binary + " test " + strings.Join(sorted, " ")
}
