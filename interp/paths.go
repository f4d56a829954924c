package interp

import (
	"path"
	"path/filepath"
	"strings"
)

// resolve normalizes a model-supplied path to a clean slash path relative
// to the project root. It reports false for absolute paths and for paths
// that escape the root.
func resolve(rel string) (string, bool) {
	p := strings.ReplaceAll(strings.TrimSpace(rel), "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return "", false
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
		return "", false
	}
	return clean, true
}

// withinScope reports whether target lies inside an agent's scope path.
// The master's scope is the empty path, which admits everything.
func withinScope(scope, target string) bool {
	if scope == "" {
		return target != ""
	}
	return target == scope || strings.HasPrefix(target, scope+"/")
}

// abs converts a clean relative path to an absolute filesystem path under
// the project root
func (in *Interp) abs(rel string) string {
	return filepath.Join(in.root, filepath.FromSlash(rel))
}
