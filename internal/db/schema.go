package db

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// IndexFieldType enumerates the FT field types profile queries need.
type IndexFieldType int

const (
	// IndexFieldTag is an exact-match, case-insensitive field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldNumeric is a range-filterable, sortable field.
	IndexFieldNumeric
)

// IndexField is one JSONPath projected into an FT index.
type IndexField struct {
	Path  string // e.g. $.location.country
	Alias string // name used in queries
	Type  IndexFieldType
}

// IndexDefinition describes an FT index over JSON documents.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the definition can be sent to FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i, f := range idx.Fields {
		if !strings.HasPrefix(f.Path, "$.") {
			return fmt.Errorf("field %d: path %q must be a JSONPath", i, f.Path)
		}
		if f.Alias == "" {
			return fmt.Errorf("field %s: alias is required", f.Path)
		}
		if _, dup := seen[f.Alias]; dup {
			return fmt.Errorf("duplicate field alias: %s", f.Alias)
		}
		seen[f.Alias] = struct{}{}
	}
	return nil
}

// VersionedIndexName appends a schema version so a changed field list gets a fresh index.
func VersionedIndexName(base string, version int) string {
	return fmt.Sprintf("%s:v%d", base, version)
}

// IndexBuilder is a fluent builder for JSON index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Path: path, Alias: alias, Type: IndexFieldTag})
	return b
}

// Numeric adds a sortable NUMERIC field.
func (b *IndexBuilder) Numeric(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Path: path, Alias: alias, Type: IndexFieldNumeric})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Prefixes = slices.Clone(b.def.Prefixes)
	def.Fields = slices.Clone(b.def.Fields)
	return &def, nil
}

// MustBuild calls Build and panics on error. For package-level schemas.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != ':' && r != '-' {
			return false
		}
	}
	return true
}
