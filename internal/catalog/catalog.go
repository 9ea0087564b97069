// Package catalog loads the field mapping catalog that drives the direct
// mapper. A Catalog is built once at startup and never changes afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"acordex/internal/domain"
)

//go:embed acord25.json
var defaultCatalog []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// FieldMappingRule maps an ordered list of candidate PDF fields to one output
// path.
type FieldMappingRule struct {
	OutputPath       []string         `json:"output_path"`
	SourceFieldNames []string         `json:"source_fields"`
	Transform        domain.Transform `json:"transform"`
}

// PathKey returns the dotted form of the output path.
func (r FieldMappingRule) PathKey() string {
	return strings.Join(r.OutputPath, ".")
}

// Catalog is an immutable, validated list of mapping rules.
type Catalog struct {
	name     string
	formCode string
	rules    []FieldMappingRule
}

// ConfigError describes a catalog that cannot be used.
type ConfigError struct {
	Index  int
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return "field mapping catalog: " + e.Reason
	}
	return fmt.Sprintf("field mapping catalog: rule %d: %s", e.Index, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == domain.ErrMappingConfig }

type catalogFile struct {
	Name     string             `json:"name"`
	FormCode string             `json:"form_code"`
	Rules    []FieldMappingRule `json:"rules"`
}

// Default returns the built-in ACORD 25 catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	return Parse(data)
}

// Parse validates data against the catalog schema and the output layout.
func Parse(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, &ConfigError{Index: -1, Reason: err.Error()}
	}

	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &ConfigError{Index: -1, Reason: err.Error()}
	}

	seen := make(map[string]int, len(f.Rules))
	for i := range f.Rules {
		r := &f.Rules[i]
		if err := checkRule(i, r); err != nil {
			return nil, err
		}
		key := r.PathKey()
		if prev, dup := seen[key]; dup {
			return nil, &ConfigError{Index: i, Reason: fmt.Sprintf("output path %q already mapped by rule %d", key, prev)}
		}
		seen[key] = i
	}
	for key, i := range seen {
		for other := range seen {
			if strings.HasPrefix(other, key+".") {
				return nil, &ConfigError{Index: i, Reason: fmt.Sprintf("output path %q is both a value and a section", key)}
			}
		}
	}

	return &Catalog{name: f.Name, formCode: f.FormCode, rules: f.Rules}, nil
}

func checkRule(i int, r *FieldMappingRule) error {
	if len(r.OutputPath) < 2 {
		return &ConfigError{Index: i, Reason: "output path needs a root and at least one key"}
	}
	if !domain.IsDeterministicRoot(r.OutputPath[0]) {
		return &ConfigError{Index: i, Reason: fmt.Sprintf("output path root %q does not exist", r.OutputPath[0])}
	}
	for _, key := range r.OutputPath {
		if strings.TrimSpace(key) == "" {
			return &ConfigError{Index: i, Reason: "output path has an empty key"}
		}
	}
	if len(r.SourceFieldNames) == 0 {
		return &ConfigError{Index: i, Reason: "no candidate source fields"}
	}
	for _, name := range r.SourceFieldNames {
		if strings.TrimSpace(name) == "" {
			return &ConfigError{Index: i, Reason: "empty candidate source field"}
		}
	}
	if r.Transform == "" {
		r.Transform = domain.TransformIdentity
	}
	if !r.Transform.Valid() {
		return &ConfigError{Index: i, Reason: fmt.Sprintf("unknown transform %q", r.Transform)}
	}
	return nil
}

func validateSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(catalogSchema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal catalog: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}

// Name identifies the catalog.
func (c *Catalog) Name() string { return c.name }

// FormCode is the form the catalog was written for.
func (c *Catalog) FormCode() string { return c.formCode }

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }

// Rules returns the rules in catalog order. The returned slice is a copy.
func (c *Catalog) Rules() []FieldMappingRule {
	out := make([]FieldMappingRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// TransformFor returns the transform of the rule owning path.
func (c *Catalog) TransformFor(path []string) (domain.Transform, bool) {
	key := strings.Join(path, ".")
	for _, r := range c.rules {
		if r.PathKey() == key {
			return r.Transform, true
		}
	}
	return "", false
}
