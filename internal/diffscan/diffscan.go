// Package diffscan derives hint labels from a change's unified diff.
// The labels supplement the classifier's output; they never affect the
// gating category.
package diffscan

import (
	"fmt"
	"path"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// LargeChangeLines is the added+deleted line count at which a change is
// labeled large.
const LargeChangeLines = 500

// Dependency manifests and lockfiles.
var depFiles = map[string]bool{
	"go.mod":            true,
	"go.sum":            true,
	"package.json":      true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.toml":        true,
	"Cargo.lock":        true,
	"requirements.txt":  true,
	"pyproject.toml":    true,
	"poetry.lock":       true,
	"Gemfile":           true,
	"Gemfile.lock":      true,
}

var docExts = map[string]bool{
	".md":  true,
	".rst": true,
	".txt": true,
	".adoc": true,
}

var configExts = map[string]bool{
	".yaml": true,
	".yml":  true,
	".toml": true,
	".ini":  true,
	".json": true,
	".env":  true,
}

// Stats summarizes a parsed patch.
type Stats struct {
	Files   int
	Added   int
	Deleted int
}

// Scan parses a unified diff and returns hint labels plus aggregate
// stats. An empty patch yields no labels.
func Scan(patch string) (map[string]bool, Stats, error) {
	if strings.TrimSpace(patch) == "" {
		return map[string]bool{}, Stats{}, nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parsing patch: %w", err)
	}

	var st Stats
	docsOnly := len(files) > 0
	configOnly := len(files) > 0
	touchesDeps := false

	for _, f := range files {
		st.Files++
		name := f.NewName
		if name == "" {
			name = f.OldName
		}

		if depFiles[path.Base(name)] {
			touchesDeps = true
		}
		if !docExts[strings.ToLower(path.Ext(name))] {
			docsOnly = false
		}
		if !configExts[strings.ToLower(path.Ext(name))] {
			configOnly = false
		}

		for _, frag := range f.TextFragments {
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					st.Added++
				case gitdiff.OpDelete:
					st.Deleted++
				}
			}
		}
	}

	labels := make(map[string]bool)
	if touchesDeps {
		labels["dependencies"] = true
	}
	if docsOnly {
		labels["docs-only"] = true
	}
	if configOnly {
		labels["config"] = true
	}
	if st.Added+st.Deleted >= LargeChangeLines {
		labels["large-change"] = true
	}
	return labels, st, nil
}
