package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFieldSet_SortsAndDeduplicates(t *testing.T) {
	s := NewFieldSet("title", "notes", "title", "archivedUrl", "notes")
	assert.Equal(t, FieldSet{"archivedUrl", "notes", "title"}, s)
	assert.Nil(t, NewFieldSet())
}

func TestNewFieldSet_DoesNotAliasInput(t *testing.T) {
	in := []string{"b", "a"}
	_ = NewFieldSet(in...)
	assert.Equal(t, []string{"b", "a"}, in)
}

func TestFieldSet_Intersect(t *testing.T) {
	tests := []struct {
		name string
		a, b FieldSet
		want FieldSet
	}{
		{"disjoint", NewFieldSet("notes"), SourceFingerprint, nil},
		{"one shared", NewFieldSet("notes", "archivedUrl"), SourceFingerprint, FieldSet{"archivedUrl"}},
		{"all shared", SourceFingerprint, SourceFingerprint, SourceFingerprint},
		{"empty left", nil, SourceFingerprint, nil},
		{"empty right", NewFieldSet("a"), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersect(tt.b))
		})
	}
}

func TestFieldSet_ContainsAndString(t *testing.T) {
	s := NewFieldSet("originUrl", "archivedAt")
	assert.True(t, s.Contains("archivedAt"))
	assert.False(t, s.Contains("notes"))
	assert.Equal(t, "{archivedAt, originUrl}", s.String())
	assert.Equal(t, "{}", FieldSet(nil).String())
	assert.True(t, FieldSet(nil).Empty())
}
