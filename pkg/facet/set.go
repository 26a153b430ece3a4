package facet

import "sort"

// Set is an unordered set of integers, stored as a sorted JSON array.
type Set map[int]struct{}

func NewSet(values ...int) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Add(v int) {
	s[v] = struct{}{}
}

func (s Set) Remove(v int) {
	delete(s, v)
}

func (s Set) Has(v int) bool {
	_, ok := s[v]
	return ok
}

// Toggle adds v if absent and removes it otherwise. It reports whether v is now present.
func (s Set) Toggle(v int) bool {
	if s.Has(v) {
		delete(s, v)
		return false
	}
	s[v] = struct{}{}
	return true
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order. It never returns nil.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}
