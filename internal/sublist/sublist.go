// Package sublist manipulates ordered, embedded sub-entity lists.
// Lists are newest-first. Operations never mutate their input slice.
package sublist

import (
	"errors"

	"github.com/samber/lo"
)

var (
	// ErrDuplicate is returned when an entry matching the guard already exists.
	ErrDuplicate = errors.New("entry already exists")
	// ErrNotFound is returned when no entry matches.
	ErrNotFound = errors.New("entry not found")
)

// Identified is implemented by entries that carry their own id.
type Identified interface {
	EntryID() string
}

// Prepend returns a new list with entry at the head.
func Prepend[T any](list []T, entry T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, entry)
	return append(out, list...)
}

// InsertUnique prepends entry unless some existing entry satisfies match.
func InsertUnique[T any](list []T, entry T, match func(T) bool) ([]T, error) {
	if lo.ContainsBy(list, match) {
		return list, ErrDuplicate
	}
	return Prepend(list, entry), nil
}

// Find returns the first entry satisfying match.
func Find[T any](list []T, match func(T) bool) (T, bool) {
	return lo.Find(list, match)
}

// RemoveFirst deletes the first entry satisfying match, keeping the relative
// order of the rest. The lookup and the removal use the same scan, so the
// removed element is always the one that matched.
func RemoveFirst[T any](list []T, match func(T) bool) ([]T, T, error) {
	_, idx, ok := lo.FindIndexOf(list, match)
	if !ok {
		var zero T
		return list, zero, ErrNotFound
	}
	removed := list[idx]
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out, removed, nil
}

// RemoveByID deletes the entry whose id equals id.
func RemoveByID[T Identified](list []T, id string) ([]T, T, error) {
	return RemoveFirst(list, ByID[T](id))
}

// ByID matches entries by id.
func ByID[T Identified](id string) func(T) bool {
	return func(e T) bool {
		return e.EntryID() == id
	}
}
