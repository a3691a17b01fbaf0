package qna

// NextRootPath returns the path for a new root reply given the current
// maximum root path of the Qna ("" when there is none).
func NextRootPath(maxRootPath Path) (Path, error) {
	if maxRootPath.IsZero() {
		return FormatPath([]int{MinSegmentValue})
	}
	segments, err := maxRootPath.Segments()
	if err != nil {
		return "", err
	}
	if len(segments) != 1 {
		return "", ErrPathFormat.Errorf("max root path %q is not a root path", maxRootPath)
	}
	return FormatPath([]int{segments[0] + 1})
}

// NextChildPath returns the path for a new child of parentPath given the
// current maximum immediate child ("" when there is none).
//
// maxChildPath must be an immediate child of parentPath. A grandchild passed
// by mistake is a format error, never silently reused as a sibling.
func NextChildPath(parentPath, maxChildPath Path) (Path, error) {
	parentSegments, err := parentPath.Segments()
	if err != nil {
		return "", err
	}
	if len(parentSegments) >= MaxReplyDepth {
		return "", ErrReplyDepthExceeded.Errorf("reply at depth %d cannot have children (max depth %d)",
			len(parentSegments), MaxReplyDepth)
	}

	next := MinSegmentValue
	if !maxChildPath.IsZero() {
		if !maxChildPath.IsChildOf(parentPath) {
			return "", ErrPathFormat.Errorf("path %q is not an immediate child of %q", maxChildPath, parentPath)
		}
		childSegments, err := maxChildPath.Segments()
		if err != nil {
			return "", err
		}
		next = childSegments[len(childSegments)-1] + 1
	}

	segments := make([]int, 0, len(parentSegments)+1)
	segments = append(segments, parentSegments...)
	segments = append(segments, next)
	return FormatPath(segments)
}

// MaxInScope returns the greatest path in candidates that sits directly in
// the scope of parentPath: a root when parentPath is empty, an immediate child
// otherwise. Deeper and unrelated paths are skipped. It returns "" when no
// candidate qualifies.
func MaxInScope(parentPath Path, candidates []Path) Path {
	var top Path
	for _, c := range candidates {
		if !c.inScope(parentPath) {
			continue
		}
		if ComparePaths(c, top) > 0 {
			top = c
		}
	}
	return top
}

func (p Path) inScope(parentPath Path) bool {
	if parentPath.IsZero() {
		return p.IsRoot()
	}
	return p.IsChildOf(parentPath)
}
