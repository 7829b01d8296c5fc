package revision

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

const (
	// KindUnset marks a field that is absent. Resolving it reports false.
	KindUnset Kind = iota
	// KindScalar holds a single value valid for every revision.
	KindScalar
	// KindList holds values indexed by revision position. Before
	// densification it may be shorter than the revision count.
	KindList
	// KindByID holds values keyed by revision id.
	KindByID
)

// String returns the variant name used in logs and test failures.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindByID:
		return "byID"
	default:
		return "unset"
	}
}

// Value is a revisioned field. The zero value is unset.
//
// Values are immutable from the caller's point of view: constructors copy
// their inputs and accessors return copies, so a Value can be shared between
// items and cloned trees without aliasing surprises.
type Value[T any] struct {
	kind   Kind
	scalar T
	list   []T
	byID   map[string]T
}

// Scalar returns a value that is the same at every revision.
func Scalar[T any](v T) Value[T] {
	return Value[T]{kind: KindScalar, scalar: v}
}

// List returns a value indexed by revision position.
func List[T any](vs ...T) Value[T] {
	return Value[T]{kind: KindList, list: slices.Clone(vs)}
}

// ByID returns a value keyed by revision id.
func ByID[T any](m map[string]T) Value[T] {
	return Value[T]{kind: KindByID, byID: maps.Clone(m)}
}

// Kind reports the variant held by v.
func (v Value[T]) Kind() Kind { return v.kind }

// IsSet reports whether v holds any variant.
func (v Value[T]) IsSet() bool { return v.kind != KindUnset }

// Len returns the number of stored entries: 1 for scalars, 0 when unset.
func (v Value[T]) Len() int {
	switch v.kind {
	case KindScalar:
		return 1
	case KindList:
		return len(v.list)
	case KindByID:
		return len(v.byID)
	}
	return 0
}

// Scalar returns the scalar payload and whether v is a scalar.
func (v Value[T]) Scalar() (T, bool) {
	return v.scalar, v.kind == KindScalar
}

// List returns a copy of the list payload, or nil if v is not a list.
func (v Value[T]) List() []T {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.list)
}

// ByID returns a copy of the id-keyed payload, or nil if v is not keyed by id.
func (v Value[T]) ByID() map[string]T {
	if v.kind != KindByID {
		return nil
	}
	return maps.Clone(v.byID)
}

// Values returns every stored entry in revision order. Scalars yield one
// entry. Id-keyed values yield their entries sorted by id.
func (v Value[T]) Values() []T {
	switch v.kind {
	case KindScalar:
		return []T{v.scalar}
	case KindList:
		return slices.Clone(v.list)
	case KindByID:
		out := make([]T, 0, len(v.byID))
		for _, k := range slices.Sorted(maps.Keys(v.byID)) {
			out = append(out, v.byID[k])
		}
		return out
	}
	return nil
}

// Resolve returns the value at revision index idx.
//
// Scalars resolve at every index. Lists resolve to list[idx], clamping
// indices past the end to the last element and negative indices to the
// first. Unset values, empty lists and id-keyed values (which need the
// revision ids, see [Value.Densify]) report false.
func (v Value[T]) Resolve(idx int) (T, bool) {
	var zero T
	switch v.kind {
	case KindScalar:
		return v.scalar, true
	case KindList:
		if len(v.list) == 0 {
			return zero, false
		}
		idx = max(0, min(idx, len(v.list)-1))
		return v.list[idx], true
	}
	return zero, false
}

// Densify returns v as a dense list with one entry per revision id.
//
// Lists are right-extended by repeating their last element and truncated
// when longer than ids. Id-keyed values are read revision by revision; a
// revision missing from the map copies the previous revision's value, and a
// missing first revision takes first. Scalars, unset values and empty lists
// pass through unchanged, as does everything when ids is empty.
func (v Value[T]) Densify(ids []string, first T) Value[T] {
	if len(ids) == 0 {
		return v
	}
	switch v.kind {
	case KindList:
		if len(v.list) == 0 {
			return v
		}
		out := make([]T, len(ids))
		for i := range out {
			out[i] = v.list[min(i, len(v.list)-1)]
		}
		return Value[T]{kind: KindList, list: out}
	case KindByID:
		out := make([]T, len(ids))
		for i, id := range ids {
			if val, ok := v.byID[id]; ok {
				out[i] = val
			} else if i == 0 {
				out[i] = first
			} else {
				out[i] = out[i-1]
			}
		}
		return Value[T]{kind: KindList, list: out}
	}
	return v
}

// Map applies f to every stored entry and returns the result as a new value
// of the same kind.
func Map[T, U any](v Value[T], f func(T) U) Value[U] {
	switch v.kind {
	case KindScalar:
		return Scalar(f(v.scalar))
	case KindList:
		out := make([]U, len(v.list))
		for i, x := range v.list {
			out[i] = f(x)
		}
		return Value[U]{kind: KindList, list: out}
	case KindByID:
		out := make(map[string]U, len(v.byID))
		for k, x := range v.byID {
			out[k] = f(x)
		}
		return Value[U]{kind: KindByID, byID: out}
	}
	return Value[U]{}
}

// MarshalJSON writes the value in its input shape: a scalar, an array or an
// object. Unset values encode as null.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return json.Marshal(v.scalar)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindByID:
		return json.Marshal(v.byID)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a scalar, an array or an object and records the
// matching variant. null leaves the value unset.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value[T]{}
		return nil
	}
	switch data[0] {
	case '[':
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if list == nil {
			list = []T{}
		}
		*v = Value[T]{kind: KindList, list: list}
	case '{':
		var m map[string]T
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = Value[T]{kind: KindByID, byID: m}
	default:
		var s T
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value[T]{kind: KindScalar, scalar: s}
	}
	return nil
}
