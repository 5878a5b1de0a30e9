package definitions

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jonathan/assessment-engine/internal/types"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin parses and returns the embedded assessment catalog, sorted by id.
func Builtin() ([]*types.AssessmentDefinition, error) {
	names, err := fs.Glob(builtinFS, "builtin/*.yaml")
	if err != nil {
		return nil, &LoadError{Message: "failed to list embedded definitions", Cause: err}
	}

	defs := make([]*types.AssessmentDefinition, 0, len(names))
	for _, name := range names {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("failed to read embedded %s", name), Cause: err}
		}
		def, err := Parse(data, FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("embedded %s: %w", path.Base(name), err)
		}
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].ID < defs[j].ID
	})
	return defs, nil
}

// MustBuiltin is like Builtin but panics on error. The embedded catalog is
// covered by tests, so a failure here is a build defect.
func MustBuiltin() []*types.AssessmentDefinition {
	defs, err := Builtin()
	if err != nil {
		panic(err)
	}
	return defs
}
