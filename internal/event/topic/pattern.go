package topic

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is matched by every *InvalidPatternError.
var ErrInvalidPattern = errors.New("invalid pattern")

// InvalidPatternError reports a pattern that cannot be compiled into a matcher.
type InvalidPatternError struct {
	// Pattern is the offending pattern.
	Pattern string

	// Reason describes what is wrong with it.
	Reason string

	// Err is the regexp compilation error, if any.
	Err error
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid pattern %q: %s: %v", e.Pattern, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Reason)
}

// Unwrap returns the underlying compilation error.
func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match InvalidPatternError with ErrInvalidPattern.
func (e *InvalidPatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// wildcardSegment is the expression a "*" segment is translated to.
const wildcardSegment = `[^.]+`

// Pattern is a compiled subscription pattern.
type Pattern struct {
	topic    Topic
	compiled *regexp.Regexp // nil for exact patterns
}

// Compile compiles a pattern for matching against event names.
//
// Patterns without a "*" segment match by equality only. Wildcard patterns
// are translated to an unanchored regular expression; see the package
// documentation for the substring semantics this implies.
func Compile(pattern Topic) (*Pattern, error) {
	p := &Pattern{topic: pattern}
	if !pattern.IsWildcard() {
		return p, nil
	}

	expr, err := translate(pattern)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &InvalidPatternError{
			Pattern: string(pattern),
			Reason:  "cannot compile wildcard expression",
			Err:     err,
		}
	}
	p.compiled = re
	return p, nil
}

// translate converts a wildcard pattern into a regular expression.
// Every "*" segment after the first becomes one run of non-dot characters;
// literal segments are quoted.
func translate(pattern Topic) (string, error) {
	segments := pattern.Segments()
	parts := make([]string, len(segments))

	for i, seg := range segments {
		if seg != Wildcard {
			parts[i] = regexp.QuoteMeta(seg)
			continue
		}
		if i == 0 {
			return "", &InvalidPatternError{
				Pattern: string(pattern),
				Reason:  "wildcard cannot be the first segment",
			}
		}
		parts[i] = wildcardSegment
	}

	return strings.Join(parts, regexp.QuoteMeta(Separator)), nil
}

// Topic returns the original pattern.
func (p *Pattern) Topic() Topic {
	return p.topic
}

// String returns the original pattern as a string.
func (p *Pattern) String() string {
	return string(p.topic)
}

// IsWildcard returns true if the pattern contains a wildcard segment.
func (p *Pattern) IsWildcard() bool {
	return p.compiled != nil
}

// Expr returns the compiled expression, or "" for exact patterns.
func (p *Pattern) Expr() string {
	if p.compiled == nil {
		return ""
	}
	return p.compiled.String()
}

// Match reports whether the event name selects this pattern.
// Exact equality always matches; wildcard patterns additionally match when
// their expression is found anywhere in name.
func (p *Pattern) Match(name Topic) bool {
	if p == nil {
		return false
	}
	if name == p.topic {
		return true
	}
	if p.compiled == nil {
		return false
	}
	return p.compiled.MatchString(string(name))
}
