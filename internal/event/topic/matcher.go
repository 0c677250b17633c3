package topic

// Matcher is an insertion-ordered index of compiled patterns.
// It is not safe for concurrent use.
type Matcher struct {
	order    []Topic
	patterns map[Topic]*Pattern
}

// NewMatcher creates a new, empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		patterns: make(map[Topic]*Pattern),
	}
}

// Add compiles and appends a pattern.
// Adding a pattern that is already present returns the existing compiled
// pattern and keeps its position.
func (m *Matcher) Add(pattern Topic) (*Pattern, error) {
	if p, ok := m.patterns[pattern]; ok {
		return p, nil
	}

	p, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	m.order = append(m.order, pattern)
	m.patterns[pattern] = p
	return p, nil
}

// Remove removes a pattern. Returns false if it was not present.
func (m *Matcher) Remove(pattern Topic) bool {
	if _, ok := m.patterns[pattern]; !ok {
		return false
	}
	delete(m.patterns, pattern)

	for i, t := range m.order {
		if t == pattern {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the compiled pattern.
func (m *Matcher) Get(pattern Topic) (*Pattern, bool) {
	p, ok := m.patterns[pattern]
	return p, ok
}

// Match returns every pattern that selects the event name, in insertion
// order. Each pattern appears at most once.
func (m *Matcher) Match(name Topic) []Topic {
	var matches []Topic
	for _, t := range m.order {
		if m.patterns[t].Match(name) {
			matches = append(matches, t)
		}
	}
	return matches
}

// MatchExact returns true if a pattern equal to name is present.
// Wildcards are never expanded.
func (m *Matcher) MatchExact(name Topic) bool {
	_, ok := m.patterns[name]
	return ok
}

// Patterns returns all patterns in insertion order.
func (m *Matcher) Patterns() []Topic {
	if len(m.order) == 0 {
		return nil
	}
	result := make([]Topic, len(m.order))
	copy(result, m.order)
	return result
}

// Count returns the number of patterns.
func (m *Matcher) Count() int {
	return len(m.order)
}

// Clear removes all patterns.
func (m *Matcher) Clear() {
	m.order = nil
	m.patterns = make(map[Topic]*Pattern)
}
