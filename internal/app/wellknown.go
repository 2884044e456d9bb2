package app

import "strings"

// parseCoreLinks extracts resource paths from a .well-known/core
// link-format payload. It is deliberately loose: it takes everything
// of the form </path>, ignores attributes, and skips anything that
// does not look like an absolute path.
func parseCoreLinks(payload []byte) []string {
	var paths []string
	for _, entry := range strings.Split(string(payload), ",") {
		entry = strings.TrimSpace(entry)
		rest, ok := strings.CutPrefix(entry, "<")
		if !ok {
			continue
		}
		path, _, ok := strings.Cut(rest, ">")
		if !ok || !strings.HasPrefix(path, "/") {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}
