package deps

// Set is an ordered collection of references in which no two entries name
// the same package (compared case-insensitively). The first insertion of a
// package wins, including its version pin.
//
// The zero value is an empty, ready to use Set.
type Set struct {
	refs []Reference
	seen map[string]struct{}
}

// NewSet returns a Set holding refs in first-seen order.
func NewSet(refs ...Reference) *Set {
	s := &Set{}
	for _, r := range refs {
		s.Add(r)
	}
	return s
}

// Add appends r unless a reference to the same package is already present.
// It reports whether r was added.
func (s *Set) Add(r Reference) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	k := r.key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.refs = append(s.refs, r)
	return true
}

// Contains reports whether a reference to the same package is present.
func (s *Set) Contains(r Reference) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[r.key()]
	return ok
}

// Len returns the number of references.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.refs)
}

// Refs returns a copy of the references in insertion order.
func (s *Set) Refs() []Reference {
	if s == nil {
		return nil
	}
	out := make([]Reference, len(s.refs))
	copy(out, s.refs)
	return out
}

// Names returns the scoped names in insertion order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.refs))
	for i, r := range s.refs {
		names[i] = r.FullName()
	}
	return names
}
