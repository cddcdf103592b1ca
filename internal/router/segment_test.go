package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avaroute/internal/util"
)

func TestClassifySegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected Segment
	}{
		{"static", "users", Segment{Kind: SegmentStatic, Value: "users"}},
		{"empty static", "", Segment{Kind: SegmentStatic, Value: ""}},
		{"param", "{id}", Segment{Kind: SegmentParam, Value: "id"}},
		{"wildcard", "{*rest}", Segment{Kind: SegmentWildcard, Value: "rest"}},
		{"static with dot", "file.txt", Segment{Kind: SegmentStatic, Value: "file.txt"}},
		{"star without braces", "*", Segment{Kind: SegmentStatic, Value: "*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seg, err := ClassifySegment(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, seg)
		})
	}
}

func TestClassifySegment_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"{", "}", "{id", "id}", "a{id}", "{id}b", "{}", "{*}", "{a{b}", "{a*b}", "{**x}"} {
		_, err := ClassifySegment(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, util.ErrMalformedPattern), raw)
	}
}

func TestSegmentKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "static", SegmentStatic.String())
	assert.Equal(t, "param", SegmentParam.String())
	assert.Equal(t, "wildcard", SegmentWildcard.String())
	assert.Equal(t, "unknown", SegmentKind(9).String())
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected []string
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"/a", []string{"a"}},
		{"/a/", []string{"a"}},
		{"a/b", []string{"a", "b"}},
		{"/a//b/", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, SplitPath(tt.path))
		})
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	segments, err := ParsePattern("/api/{version}/files/{*path}")
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Kind: SegmentStatic, Value: "api"},
		{Kind: SegmentParam, Value: "version"},
		{Kind: SegmentStatic, Value: "files"},
		{Kind: SegmentWildcard, Value: "path"},
	}, segments)

	root, err := ParsePattern("/")
	require.NoError(t, err)
	assert.Empty(t, root)
}

func TestParsePattern_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		segment string
	}{
		{"non-terminal wildcard", "/files/{*path}/meta", "{*path}"},
		{"unbalanced", "/users/{id", "{id"},
		{"empty name", "/users/{}", "{}"},
		{"duplicate param", "/a/{id}/b/{id}", "{id}"},
		{"duplicate param and wildcard", "/a/{x}/{*x}", "{*x}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParsePattern(tt.pattern)
			require.Error(t, err)

			var mpe *util.MalformedPatternError
			require.True(t, errors.As(err, &mpe))
			assert.Equal(t, tt.pattern, mpe.Pattern)
			assert.Equal(t, tt.segment, mpe.Segment)
		})
	}
}
