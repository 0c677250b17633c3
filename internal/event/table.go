package event

import "github.com/dshills/relay/internal/event/topic"

// entry is one pattern's subscriber set, in registration order.
type entry struct {
	pattern *topic.Pattern
	subs    []*subscription
}

// find returns the subscription whose handler equals h.
func (e *entry) find(h Handler) *subscription {
	for _, s := range e.subs {
		if s.handler == h {
			return s
		}
	}
	return nil
}

// snapshot returns a copy of the set.
func (e *entry) snapshot() []*subscription {
	result := make([]*subscription, len(e.subs))
	copy(result, e.subs)
	return result
}

// table maps patterns to non-empty subscriber sets. Pattern order is kept
// by the matcher; an emptied entry is deleted at once, so a re-created
// pattern moves to the end.
type table struct {
	matcher *topic.Matcher
	entries map[topic.Topic]*entry
	count   int

	// refs counts each handler's subscriptions across all patterns.
	refs map[Handler]int
}

// newTable creates an empty table.
func newTable() *table {
	return &table{
		matcher: topic.NewMatcher(),
		entries: make(map[topic.Topic]*entry),
		refs:    make(map[Handler]int),
	}
}

// get returns the entry for an exact pattern. Wildcards are never
// expanded.
func (t *table) get(pattern string) (*entry, bool) {
	key := topic.Topic(pattern)
	if !t.matcher.MatchExact(key) {
		return nil, false
	}
	return t.entries[key], true
}

// ensure returns the entry for pattern, compiling and appending a new one
// if needed. The new entry stays empty until add is called.
func (t *table) ensure(pattern string) (*entry, error) {
	key := topic.Topic(pattern)
	if _, ok := t.matcher.Get(key); ok {
		return t.entries[key], nil
	}

	p, err := t.matcher.Add(key)
	if err != nil {
		return nil, err
	}

	e := &entry{pattern: p}
	t.entries[key] = e
	return e, nil
}

// add appends s to e.
func (t *table) add(e *entry, s *subscription) {
	e.subs = append(e.subs, s)
	t.count++
	t.refs[s.handler]++
}

// release drops one reference to h and notifies h once it has no
// subscription left.
func (t *table) release(h Handler) {
	t.refs[h]--
	if t.refs[h] > 0 {
		return
	}
	delete(t.refs, h)
	if r, ok := h.(Releaser); ok {
		r.Release()
	}
}

// remove takes s out of its set and deletes the set if it is now empty.
// Returns false if s was already removed.
func (t *table) remove(s *subscription) bool {
	if s.removed {
		return false
	}

	e, ok := t.get(s.pattern)
	if !ok {
		return false
	}

	for i, cur := range e.subs {
		if cur == s {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			break
		}
	}
	s.removed = true
	t.count--
	t.release(s.handler)

	if len(e.subs) == 0 {
		t.drop(s.pattern)
	}
	return true
}

// drop deletes a whole entry. Returns the removed subscriptions.
func (t *table) drop(pattern string) []*subscription {
	key := topic.Topic(pattern)
	e, ok := t.entries[key]
	if !ok {
		return nil
	}

	delete(t.entries, key)
	t.matcher.Remove(key)

	removed := e.subs
	e.subs = nil
	t.count -= len(removed)
	for _, s := range removed {
		s.removed = true
		t.release(s.handler)
	}
	return removed
}

// match returns every entry that selects name, in table order.
func (t *table) match(name string) []*entry {
	keys := t.matcher.Match(topic.Topic(name))
	if len(keys) == 0 {
		return nil
	}

	result := make([]*entry, 0, len(keys))
	for _, k := range keys {
		result = append(result, t.entries[k])
	}
	return result
}

// patterns returns all patterns in table order.
func (t *table) patterns() []string {
	keys := t.matcher.Patterns()
	if len(keys) == 0 {
		return nil
	}

	result := make([]string, len(keys))
	for i, k := range keys {
		result[i] = k.String()
	}
	return result
}

// size returns the number of patterns.
func (t *table) size() int {
	return t.matcher.Count()
}

// clear removes every entry.
func (t *table) clear() {
	entries := t.entries
	t.entries = make(map[topic.Topic]*entry)
	t.matcher.Clear()
	t.count = 0

	for _, e := range entries {
		subs := e.subs
		e.subs = nil
		for _, s := range subs {
			s.removed = true
			t.release(s.handler)
		}
	}
}
