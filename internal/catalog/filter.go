package catalog

import "github.com/bmatcuk/doublestar/v4"

// Filter keeps descriptors whose URL matches any include pattern (all pass
// when none are given) and no exclude pattern. Patterns are doublestar
// globs matched against the full URL.
func Filter(descriptors []Descriptor, include, exclude []string) []Descriptor {
	out := descriptors[:0:0]
	for _, d := range descriptors {
		if matchesAny(d.URL, exclude) {
			continue
		}
		if len(include) > 0 && !matchesAny(d.URL, include) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesAny(url string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, url); err == nil && ok {
			return true
		}
	}
	return false
}
