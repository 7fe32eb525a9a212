package utils

// OrderedSet is a string set that remembers insertion order. It backs every
// "insertion order preserved, duplicates removed" accumulation in the
// aggregation and merge engines (listing links, read-back link unions).
// The crawl is strictly sequential, so no locking is needed.
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
}

// NewOrderedSet creates an empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add inserts the value unless it is empty or already present.
// It returns true if the value was newly added.
func (s *OrderedSet) Add(value string) bool {
	if value == "" {
		return false
	}
	if _, exists := s.seen[value]; exists {
		return false
	}
	s.seen[value] = struct{}{}
	s.items = append(s.items, value)
	return true
}

// AddAll inserts every value in order.
func (s *OrderedSet) AddAll(values ...string) {
	for _, v := range values {
		s.Add(v)
	}
}

// Contains reports whether the value is present.
func (s *OrderedSet) Contains(value string) bool {
	_, exists := s.seen[value]
	return exists
}

// Values returns the members in insertion order. The slice is a copy.
func (s *OrderedSet) Values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of members.
func (s *OrderedSet) Len() int {
	return len(s.items)
}
