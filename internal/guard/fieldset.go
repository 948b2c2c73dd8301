package guard

import (
	"sort"
	"strings"
)

// FieldSet is a sorted, de-duplicated set of field names.
// The zero value is the empty set.
type FieldSet []string

// NewFieldSet builds a FieldSet from names in any order.
func NewFieldSet(names ...string) FieldSet {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)

	n := 0
	for i, name := range out {
		if i > 0 && name == out[n-1] {
			continue
		}
		out[n] = name
		n++
	}
	return FieldSet(out[:n])
}

// Contains reports whether name is in the set.
func (s FieldSet) Contains(name string) bool {
	i := sort.SearchStrings(s, name)
	return i < len(s) && s[i] == name
}

// Intersect returns the names present in both sets.
func (s FieldSet) Intersect(other FieldSet) FieldSet {
	var out FieldSet
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			out = append(out, s[i])
			i++
			j++
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Empty reports whether the set has no names.
func (s FieldSet) Empty() bool {
	return len(s) == 0
}

func (s FieldSet) String() string {
	return "{" + strings.Join(s, ", ") + "}"
}
