// Package topic provides event-name types and wildcard pattern matching for
// the registry.
//
// # Topic Format
//
// Event names use dot-notation to create hierarchical namespaces:
//
//	user.created
//	order.line.added
//	config.reloaded
//
// # Wildcards
//
// A pattern segment equal to "*" matches exactly one run of non-dot
// characters in that position:
//
//	order.*.added     matches order.line.added, order.fee.added
//	order.*           matches order.created, order.line
//
// A "*" in the first segment has no translation and is rejected by Compile.
// A "*" that is only part of a segment (for example "a*b") is literal text
// and the pattern matches by equality only.
//
// # Substring Semantics
//
// Compiled wildcard expressions are not anchored. Match performs a
// substring search, so "order.*" also matches "order.line.added" and
// "archive.order.created". Exact patterns always compare by equality.
//
// # Usage
//
//	m := topic.NewMatcher()
//	m.Add(topic.Topic("order.*"))
//	m.Add(topic.Topic("order.created"))
//
//	matches := m.Match(topic.Topic("order.created"))
//	// matches contains both patterns, in insertion order
package topic
