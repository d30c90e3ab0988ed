package domain

import "reflect"

// FieldChange holds the before/after values of a single changed field.
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// ChangeSet maps field names to their before/after values. It contains only
// fields whose value actually differs between two snapshots.
type ChangeSet map[string]FieldChange

// Snapshot is a field-name to value view of an entity taken before or after
// a mutation. Values are expected to be scalars, *scalars, or ordered lists
// ([]string, []any); anything else falls back to deep equality when diffed.
type Snapshot map[string]any

// Diff compares two snapshots over the tracked fields only and returns the
// set of fields whose values differ. Untracked fields are never inspected,
// even when they differ. Output is deterministic: iteration order of the
// result is up to the caller, but the content depends only on the inputs.
func Diff(before, after Snapshot, tracked []string) ChangeSet {
	changes := ChangeSet{}
	for _, field := range tracked {
		b, a := before[field], after[field]
		if !valuesEqual(b, a) {
			changes[field] = FieldChange{Before: b, After: a}
		}
	}
	return changes
}

// valuesEqual applies the deep-equality rule appropriate to the value type:
// primitive equality for scalars, same-length-and-pairwise-equal for ordered
// lists. Pointer values compare by pointee (nil pointers equal nil).
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return normalizeNil(a) == nil && normalizeNil(b) == nil
	}

	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *string:
		bv, ok := b.(*string)
		return ok && derefEqual(av, bv)
	default:
		if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
			return reflect.DeepEqual(a, b)
		}
		return a == b
	}
}

// normalizeNil folds typed nil pointers into untyped nil, so a nil *string
// compares equal to an absent field.
func normalizeNil(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
	case nil:
		return nil
	}
	return v
}

func derefEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
