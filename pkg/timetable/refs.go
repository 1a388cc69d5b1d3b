package timetable

// Handles are dense indices into the per-kind slices of a Model. NoRef marks
// an absent reference.
type (
	StopRef      int
	OperatorRef  int
	LineRef      int
	DirectionRef int
	CategoryRef  int
	AttributeRef int
	InfoTextRef  int
	PlatformRef  int
	JourneyRef   int
)

const NoRef = -1

// arena stores entities in insertion order and indexes them by key.
type arena[K comparable, T any] struct {
	items []T
	index map[K]int
}

func newArena[K comparable, T any]() arena[K, T] {
	return arena[K, T]{index: map[K]int{}}
}

// add appends item under key. It reports false, leaving the arena as is,
// when key is already taken.
func (a *arena[K, T]) add(key K, item T) (int, bool) {
	if existing, ok := a.index[key]; ok {
		return existing, false
	}

	a.items = append(a.items, item)
	a.index[key] = len(a.items) - 1

	return len(a.items) - 1, true
}

func (a *arena[K, T]) lookup(key K) (int, bool) {
	ref, ok := a.index[key]
	return ref, ok
}

func (a *arena[K, T]) at(ref int) *T {
	if ref < 0 || ref >= len(a.items) {
		return nil
	}

	return &a.items[ref]
}

func (a *arena[K, T]) len() int {
	return len(a.items)
}
