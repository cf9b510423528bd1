package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_UserProfiles(t *testing.T) {
	idx := NewIndex(VersionedIndexName("matchfeed:users:idx", 2)).
		Prefix("matchfeed:user:").
		Tag("$.location.country", "country").
		Tag("$.gender", "gender").
		Numeric("$.created_at", "created_at").
		MustBuild()

	if idx.Name != "matchfeed:users:idx:v2" {
		t.Errorf("name = %q", idx.Name)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Alias != "country" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want country TAG", idx.Fields[0])
	}
	if idx.Fields[2].Type != IndexFieldNumeric {
		t.Errorf("field[2] = %+v, want NUMERIC", idx.Fields[2])
	}
}

func TestIndexBuilder_BuildCopies(t *testing.T) {
	b := NewIndex("idx").Tag("$.a", "a")
	first := b.MustBuild()
	b.Tag("$.b", "b")
	if len(first.Fields) != 1 {
		t.Errorf("built definition changed after further building: %+v", first.Fields)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		errPart string
	}{
		{"empty name", NewIndex("").Tag("$.a", "a"), "name is required"},
		{"bad name", NewIndex("bad name!").Tag("$.a", "a"), "invalid characters"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"not jsonpath", NewIndex("idx").Tag("gender", "gender"), "JSONPath"},
		{"missing alias", NewIndex("idx").Tag("$.gender", ""), "alias is required"},
		{"duplicate alias", NewIndex("idx").Tag("$.a", "x").Tag("$.b", "x"), "duplicate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errPart) {
				t.Errorf("error = %q, want substring %q", err, tc.errPart)
			}
		})
	}
}

func TestMustBuild_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"matchfeed:users:idx:v1", true},
		{"a_b-c", true},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
	}
	for _, tc := range tests {
		if got := IsValidIdentifier(tc.in); got != tc.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
