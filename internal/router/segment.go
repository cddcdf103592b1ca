package router

import (
	"strings"

	"github.com/vyrodovalexey/avaroute/internal/util"
)

// SegmentKind identifies how a pattern segment matches a path segment.
type SegmentKind uint8

// Segment kinds.
const (
	// SegmentStatic matches one path segment by exact text.
	SegmentStatic SegmentKind = iota
	// SegmentParam matches exactly one non-empty path segment and binds it.
	SegmentParam
	// SegmentWildcard matches zero or more remaining path segments and
	// binds them joined with "/". It must be the last segment.
	SegmentWildcard
)

// String returns the segment kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "static"
	case SegmentParam:
		return "param"
	case SegmentWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Segment is one classified element of a route pattern. Value is the
// literal text for static segments and the binding name otherwise.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// ClassifySegment classifies a single raw pattern segment.
// "{name}" is a parameter, "{*name}" a wildcard, anything without braces
// is static (including the empty string).
func ClassifySegment(raw string) (Segment, error) {
	seg, reason := classify(raw)
	if reason != "" {
		return Segment{}, util.NewMalformedPatternError(raw, raw, reason)
	}
	return seg, nil
}

func classify(raw string) (Segment, string) {
	if !strings.ContainsAny(raw, "{}") {
		return Segment{Kind: SegmentStatic, Value: raw}, ""
	}

	if len(raw) < 2 || raw[0] != '{' || raw[len(raw)-1] != '}' {
		return Segment{}, "unbalanced braces"
	}

	name := raw[1 : len(raw)-1]
	kind := SegmentParam
	if strings.HasPrefix(name, "*") {
		kind = SegmentWildcard
		name = name[1:]
	}

	if name == "" {
		return Segment{}, "empty name"
	}
	if strings.ContainsAny(name, "{}*") {
		return Segment{}, "invalid character in name"
	}

	return Segment{Kind: kind, Value: name}, ""
}

// SplitPath normalises a pattern or request path into its segments.
// Leading and trailing slashes are dropped; the root path yields no
// segments. Interior empty segments ("//") are preserved.
func SplitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// ParsePattern splits and classifies a route pattern.
func ParsePattern(pattern string) ([]Segment, error) {
	parts := SplitPath(pattern)
	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for i, raw := range parts {
		seg, reason := classify(raw)
		if reason != "" {
			return nil, util.NewMalformedPatternError(pattern, raw, reason)
		}

		if seg.Kind == SegmentWildcard && i != len(parts)-1 {
			return nil, util.NewMalformedPatternError(pattern, raw, "wildcard must be the last segment")
		}

		if seg.Kind != SegmentStatic {
			if _, dup := seen[seg.Value]; dup {
				return nil, util.NewMalformedPatternError(pattern, raw, "duplicate name")
			}
			seen[seg.Value] = struct{}{}
		}

		segments = append(segments, seg)
	}

	return segments, nil
}
