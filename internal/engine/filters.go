package engine

import (
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// pathFilter holds parsed include/exclude globs. The zero value allows
// every path.
type pathFilter struct {
	includes []string
	excludes []string
}

func newPathFilter(include, exclude string) pathFilter {
	return pathFilter{
		includes: parseGlobsList(include),
		excludes: parseGlobsList(exclude),
	}
}

// allowed returns true if relPath passes the include/exclude configuration.
// Include globs, if provided, act as a positive filter; exclude globs are
// subtracted last. Paths are matched with forward slashes.
func (f pathFilter) allowed(relPath string) bool {
	rp := filepath.ToSlash(relPath)
	if len(f.includes) > 0 && !matchAnyGlob(rp, f.includes) {
		return false
	}
	if len(f.excludes) > 0 && matchAnyGlob(rp, f.excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	base := pathToMatch
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
