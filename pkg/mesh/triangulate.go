package mesh

import "github.com/Faultbox/meshkit/pkg/math"

// FanTriangulate expands a polygon's corners into triangle corner triples
// anchored at the first corner: (c0,c1,c2), (c0,c2,c3), ...
// Polygons with fewer than three corners yield nil.
func FanTriangulate[T any](corners []T) []T {
	if len(corners) < 3 {
		return nil
	}
	out := make([]T, 0, 3*(len(corners)-2))
	for i := 1; i < len(corners)-1; i++ {
		out = append(out, corners[0], corners[i], corners[i+1])
	}
	return out
}

// FaceNormal returns the unit geometric normal of triangle (a, b, c) with
// counter-clockwise winding. Degenerate triangles return the zero vector.
func FaceNormal(a, b, c math.Vec3) math.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < 1e-12 {
		return math.Vec3{}
	}
	return n.Normalize()
}
