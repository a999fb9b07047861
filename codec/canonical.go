package codec

import "strings"

// CanonicalMethod normalizes an HTTP method for binding comparison.
func CanonicalMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// CanonicalPath normalizes a URL path for binding comparison: an empty
// path becomes "/", a missing leading slash is added, trailing slashes
// are stripped and the result is lowercased. Query strings are never part
// of the bound path and must be removed by the caller.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return strings.ToLower(path)
}
