// Package mapper fills catalog output paths straight from PDF form fields.
package mapper

import (
	"acordex/internal/catalog"
	"acordex/internal/domain"
)

// Mapper applies a catalog to raw field maps. It holds no per-call state and
// is safe for concurrent use.
type Mapper struct {
	rules []catalog.FieldMappingRule
}

// New creates a Mapper over cat.
func New(cat *catalog.Catalog) *Mapper {
	return &Mapper{rules: cat.Rules()}
}

// Map walks the catalog in order. For each rule the first candidate field
// that is present, not yet consumed and non-empty after its transform wins.
// Every raw field not consumed by some rule ends up in the residual,
// untouched. Map never mutates raw.
func (m *Mapper) Map(raw domain.RawFieldMap) domain.DirectMapResult {
	byName := make(map[string][]int, raw.Len())
	for i, f := range raw {
		n := domain.NormalizeFieldName(f.Name)
		byName[n] = append(byName[n], i)
	}

	consumed := make(map[string]struct{})
	mapped := make([]domain.MappedField, 0, len(m.rules))

	for _, rule := range m.rules {
		if field, value, ok := m.pick(rule, raw, byName, consumed); ok {
			consumed[field] = struct{}{}
			mapped = append(mapped, domain.MappedField{
				Path:        rule.OutputPath,
				Value:       value,
				SourceField: field,
				Transform:   rule.Transform,
			})
		}
	}

	return domain.DirectMapResult{
		Mapped:   mapped,
		Residual: raw.Without(consumed),
	}
}

func (m *Mapper) pick(
	rule catalog.FieldMappingRule,
	raw domain.RawFieldMap,
	byName map[string][]int,
	consumed map[string]struct{},
) (string, string, bool) {
	for _, candidate := range rule.SourceFieldNames {
		for _, i := range byName[domain.NormalizeFieldName(candidate)] {
			f := raw[i]
			if _, used := consumed[f.Name]; used {
				continue
			}
			if v := Apply(rule.Transform, f.Value); v != "" {
				return f.Name, v, true
			}
		}
	}
	return "", "", false
}
