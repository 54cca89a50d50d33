package geom

import (
	"math"
)

// ClipSegment clips a two point segment against the half plane
// {x : normal*x <= level + icTol}. dirs, when non-nil, is the parallel
// slice of boundary directions and is kept in sync: the endpoint replaced
// by an intersection gets the direction of the clipping line. Segments
// that do not have exactly two points are cleared. When both endpoints lie
// within intersectTol of the boundary the intersection is degenerate and
// the segment is cleared.
func ClipSegment(normal Point, level float64, seg, dirs Tuple, icTol, intersectTol float64) (Tuple, Tuple) {
	if len(seg) != 2 {
		return nil, nil
	}

	l0 := normal.Dot(seg[0])
	l1 := normal.Dot(seg[1])

	switch {
	case l0 > level+icTol && l1 > level+icTol:
		// Both lie above the ray.
		return nil, nil
	case l0 < level && l1 < level:
		return seg, dirs
	case math.Abs(l0-l1) < intersectTol:
		return nil, nil
	}

	weightOn1 := (level - l0) / (l1 - l0)
	switch {
	case weightOn1 > 1:
		seg[0] = seg[1]
		if dirs != nil {
			dirs[0] = dirs[1]
		}
	case weightOn1 < 0:
		seg[1] = seg[0]
		if dirs != nil {
			dirs[1] = dirs[0]
		}
	default:
		intersection := Interpolate(seg[0], seg[1], weightOn1)
		replace := 0
		if l0 < l1 {
			replace = 1
		}
		seg[replace] = intersection
		if dirs != nil {
			// The frontier at the new endpoint runs along the clipping
			// line, oriented counter-clockwise around the correspondence.
			dirs[replace] = normal.Normal().Scale(-1)
		}
	}
	return seg, dirs
}

// IntersectRaySegment clips seg against the half plane below the clockwise
// ray through pivot in the given direction, {x : normal(dir)*x <=
// normal(dir)*pivot + icTol}.
func IntersectRaySegment(pivot, dir Point, seg, dirs Tuple, icTol, intersectTol float64) (Tuple, Tuple) {
	normal := dir.Normal()
	return ClipSegment(normal, normal.Dot(pivot), seg, dirs, icTol, intersectTol)
}
