package topic

import "strings"

// Topic is an event name or a subscription pattern, for example
// "order.created" or "order.*.added".
type Topic string

// Wildcard is the segment that stands for one run of non-dot characters.
const Wildcard = "*"

// Separator splits a topic into segments.
const Separator = "."

func (t Topic) String() string {
	return string(t)
}

// Segments splits the topic on Separator. The empty topic has none.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsWildcard reports whether one of the segments is exactly Wildcard.
// A "*" inside a longer segment, as in "order.a*b", is literal.
func (t Topic) IsWildcard() bool {
	for _, seg := range t.Segments() {
		if seg == Wildcard {
			return true
		}
	}
	return false
}
