package definitions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/assessment-engine/internal/schemas"
	"github.com/jonathan/assessment-engine/internal/types"
)

// Format identifies the encoding of a definition document.
type Format string

// Supported definition formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

var validate = validator.New()

// Parse decodes, schema-validates and checks one assessment definition.
// Decoding failures are returned as *LoadError; every content problem
// (schema, struct tags, cross-references) is returned as *ConfigError.
func Parse(data []byte, format Format) (*types.AssessmentDefinition, error) {
	jsonData, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateDefinition(jsonData); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			problems := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				problems = append(problems, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
			}
			return nil, &ConfigError{AssessmentID: peekID(jsonData), Problems: problems}
		}
		return nil, &LoadError{Message: "schema validation could not run", Cause: err}
	}

	var def types.AssessmentDefinition
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return nil, &LoadError{Message: "failed to decode definition", Cause: err}
	}

	if err := validate.Struct(&def); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			problems := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
			}
			return nil, &ConfigError{AssessmentID: def.ID, Problems: problems}
		}
		return nil, &LoadError{Message: "struct validation could not run", Cause: err}
	}

	if err := Check(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads and parses a definition file. The format follows the extension.
func LoadFile(path string) (*types.AssessmentDefinition, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, &LoadError{Message: fmt.Sprintf("unsupported definition file extension: %s", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}

	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return def, nil
}

// LoadDir loads every *.json, *.yaml and *.yml file in dir, sorted by file name.
// Other files are ignored. Two files declaring the same id are an error.
func LoadDir(dir string) ([]*types.AssessmentDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read definitions directory %s", dir), Cause: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFromPath(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]*types.AssessmentDefinition, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		def, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[def.ID]; dup {
			return nil, &LoadError{Message: fmt.Sprintf("assessment %q is defined in both %s and %s", def.ID, prev, name)}
		}
		seen[def.ID] = name
		defs = append(defs, def)
	}
	return defs, nil
}

// toJSON returns the document as JSON bytes so both formats share one schema.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			return nil, &LoadError{Message: "definition is not valid JSON"}
		}
		return data, nil
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Message: "failed to parse definition YAML", Cause: err}
		}
		out, err := json.Marshal(jsonCompatible(doc))
		if err != nil {
			return nil, &LoadError{Message: "failed to convert definition YAML to JSON", Cause: err}
		}
		return out, nil
	default:
		return nil, &LoadError{Message: fmt.Sprintf("unsupported definition format %q", format)}
	}
}

// jsonCompatible rewrites YAML maps with non-string keys into string-keyed maps.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonCompatible(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonCompatible(val)
		}
		return out
	default:
		return v
	}
}

// peekID extracts the id field for error messages, if present.
func peekID(jsonData []byte) string {
	var head struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(jsonData, &head)
	return head.ID
}
