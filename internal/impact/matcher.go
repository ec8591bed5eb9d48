package impact

import "strings"

// TestMatcher decides whether a target label denotes a test target.
//
// Classification is by naming convention, not by a graph-engine-reported
// kind; it is injectable so graph engines that expose a real test-kind
// classifier (or repos with other naming schemes) can plug in their own
// predicate without changing the resolver's control flow.
type TestMatcher func(label string) bool

// DefaultTestMatcher matches labels containing "_test" or ending in "_tests".
func DefaultTestMatcher(label string) bool {
	return strings.Contains(label, "_test") || strings.HasSuffix(label, "_tests")
}

// MatcherFromPatterns builds a matcher from configured substring and suffix
// patterns. Empty pattern sets yield the default matcher.
func MatcherFromPatterns(substrings, suffixes []string) TestMatcher {
	if len(substrings) == 0 && len(suffixes) == 0 {
		return DefaultTestMatcher
	}
	return func(label string) bool {
		for _, s := range substrings {
			if strings.Contains(label, s) {
				return true
			}
		}
		for _, s := range suffixes {
			if strings.HasSuffix(label, s) {
				return true
			}
		}
		return false
	}
}
