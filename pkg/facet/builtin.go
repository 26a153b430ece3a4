package facet

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

func Int(name string, def int) *Field[int] {
	return New(name, Options[int]{
		Default: func() int { return def },
	})
}

func Float(name string, def float64) *Field[float64] {
	return New(name, Options[float64]{
		Default: func() float64 { return def },
	})
}

func String(name string, def string) *Field[string] {
	return New(name, Options[string]{
		Default: func() string { return def },
	})
}

func Bool(name string, def bool) *Field[bool] {
	return New(name, Options[bool]{
		Default: func() bool { return def },
	})
}

// Enum is a string field restricted to choices. It panics if def is not one of them.
func Enum(name string, def string, choices ...string) *Field[string] {
	if !slices.Contains(choices, def) {
		panic(fmt.Sprintf("facet: default %q of enum %s is not a choice", def, name))
	}
	allowed := slices.Clone(choices)
	return New(name, Options[string]{
		Default: func() string { return def },
		Check: func(v string) error {
			if !slices.Contains(allowed, v) {
				return fmt.Errorf("%q is not one of %v", v, allowed)
			}
			return nil
		},
	})
}

// IntSet is a set of integers stored as a sorted JSON array.
func IntSet(name string) *Field[Set] {
	return New(name, Options[Set]{
		Default: func() Set { return NewSet() },
		Validate: func(raw json.RawMessage) (Set, error) {
			values, err := decodeJSON[[]int](raw)
			if err != nil {
				return nil, err
			}
			return NewSet(values...), nil
		},
		Encode: func(v Set) any { return v.Sorted() },
		Clone:  func(v Set) Set { return v.Clone() },
	})
}

// IntList is an ordered list of integers, e.g. per-round scores.
func IntList(name string) *Field[[]int] {
	return New(name, Options[[]int]{
		Default: func() []int { return []int{} },
		Clone: func(v []int) []int {
			if v == nil {
				return []int{}
			}
			return slices.Clone(v)
		},
		Encode: func(v []int) any {
			if v == nil {
				return []int{}
			}
			return v
		},
	})
}

// Counter maps names to integer tallies, e.g. per-team scores.
func Counter(name string) *Field[map[string]int] {
	return New(name, Options[map[string]int]{
		Default: func() map[string]int { return map[string]int{} },
		Clone: func(v map[string]int) map[string]int {
			if v == nil {
				return map[string]int{}
			}
			return maps.Clone(v)
		},
		Encode: func(v map[string]int) any {
			if v == nil {
				return map[string]int{}
			}
			return v
		},
	})
}
