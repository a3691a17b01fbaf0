package qna

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// PathSeparator delimits path segments
	PathSeparator = "."
	// SegmentWidth is the fixed, zero-padded width of every segment
	SegmentWidth = 3
	// MinSegmentValue is the first segment handed out at any level
	MinSegmentValue = 1
	// MaxSegmentValue is the largest value a segment can hold
	MaxSegmentValue = 999
	// MaxReplyDepth is the deepest level a reply may sit at (root = 1)
	MaxReplyDepth = 5
)

// Path is a materialized path such as "001" or "001.002".
//
// Segments are fixed-width, zero-padded decimals, so ordering paths as plain
// strings gives the depth-first preorder of the reply tree. The zero value
// means "no path".
type Path string

// String returns the path as stored
func (p Path) String() string {
	return string(p)
}

// IsZero reports whether p is the empty path
func (p Path) IsZero() bool {
	return p == ""
}

// ParsePath splits a path into its integer segments.
// Empty, non-numeric or wrongly sized segments yield ErrPathFormat.
func ParsePath(path string) ([]int, error) {
	if path == "" {
		return nil, ErrPathFormat.Errorf("reply path is empty")
	}
	parts := strings.Split(path, PathSeparator)
	segments := make([]int, len(parts))
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, ErrPathFormat.Errorf("reply path %q: segment %d %s", path, i+1, err.Error())
		}
		segments[i] = seg
	}
	return segments, nil
}

func parseSegment(part string) (int, error) {
	if part == "" {
		return 0, fmt.Errorf("is empty")
	}
	if len(part) != SegmentWidth {
		return 0, fmt.Errorf("must be %d digits, got %q", SegmentWidth, part)
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("is not numeric: %q", part)
		}
	}
	seg, err := strconv.Atoi(part)
	if err != nil {
		return 0, err
	}
	if seg < MinSegmentValue {
		return 0, fmt.Errorf("must be at least %d, got %q", MinSegmentValue, part)
	}
	return seg, nil
}

// FormatPath zero-pads each segment and joins them with PathSeparator.
// A segment above MaxSegmentValue yields ErrPathOverflow.
func FormatPath(segments []int) (Path, error) {
	if len(segments) == 0 {
		return "", ErrPathFormat.Errorf("reply path needs at least one segment")
	}
	var b strings.Builder
	b.Grow(len(segments) * (SegmentWidth + 1))
	for i, seg := range segments {
		if seg > MaxSegmentValue {
			return "", ErrPathOverflow.Errorf("segment %d exceeds %d", seg, MaxSegmentValue)
		}
		if seg < MinSegmentValue {
			return "", ErrPathFormat.Errorf("segment %d is below %d", seg, MinSegmentValue)
		}
		if i > 0 {
			b.WriteString(PathSeparator)
		}
		fmt.Fprintf(&b, "%0*d", SegmentWidth, seg)
	}
	return Path(b.String()), nil
}

// Validate checks that p is well formed
func (p Path) Validate() error {
	_, err := ParsePath(string(p))
	return err
}

// Segments returns the parsed segments of p
func (p Path) Segments() ([]int, error) {
	return ParsePath(string(p))
}

// Depth returns the number of segments in p. The empty path has depth 0.
func (p Path) Depth() int {
	if p == "" {
		return 0
	}
	return strings.Count(string(p), PathSeparator) + 1
}

// IsChildOf reports whether p is an immediate child of parent: exactly one
// segment deeper and prefixed by parent followed by the separator.
// Grandchildren and deeper descendants are not children.
func (p Path) IsChildOf(parent Path) bool {
	if parent == "" || p == "" {
		return false
	}
	return p.Depth() == parent.Depth()+1 &&
		strings.HasPrefix(string(p), string(parent)+PathSeparator)
}

// IsDescendantOf reports whether p lies anywhere below ancestor
func (p Path) IsDescendantOf(ancestor Path) bool {
	if ancestor == "" || p == "" {
		return false
	}
	return strings.HasPrefix(string(p), string(ancestor)+PathSeparator)
}

// Parent returns the path one level up. Root paths have no parent.
func (p Path) Parent() (Path, bool) {
	idx := strings.LastIndex(string(p), PathSeparator)
	if idx < 0 {
		return "", false
	}
	return p[:idx], true
}

// IsRoot reports whether p has a single segment
func (p Path) IsRoot() bool {
	return p.Depth() == 1
}

// ComparePaths orders two paths; the result matches preorder traversal
func ComparePaths(a, b Path) int {
	return strings.Compare(string(a), string(b))
}
