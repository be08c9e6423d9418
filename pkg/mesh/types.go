// Package mesh welds triangle corners into indexed meshes and assembles
// meshes into one vertex/index buffer set with per-mesh draw ranges.
package mesh

import "github.com/Faultbox/meshkit/pkg/math"

// NoMaterial marks a vertex or mesh with no material bound.
const NoMaterial int32 = -1

// Vertex is a fully resolved corner: position, normal, texture coordinate and
// the material active when the corner was declared.
type Vertex struct {
	Position      math.Vec3
	Normal        math.Vec3
	TexCoord      math.Vec2
	MaterialIndex int32
}

// Mesh is one welded submesh. Indices point into Vertices.
type Mesh struct {
	Name          string
	MaterialIndex int32
	Vertices      []Vertex
	Indices       []uint32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// DrawRange is the span of the global index buffer belonging to one mesh.
type DrawRange struct {
	IndexOffset   uint32
	IndexCount    uint32
	MaterialIndex int32
}

// Empty reports whether the range has nothing to draw.
func (r DrawRange) Empty() bool {
	return r.IndexCount == 0
}

// Buffers holds assembled mesh data ready for GPU upload.
type Buffers struct {
	Vertices   []Vertex
	Indices    []uint32
	DrawRanges []DrawRange
	Bounds     Bounds
}

// Draws returns the draw ranges that have at least one index.
// Consumers issue one indexed draw per returned range.
func (b *Buffers) Draws() []DrawRange {
	draws := make([]DrawRange, 0, len(b.DrawRanges))
	for _, r := range b.DrawRanges {
		if r.Empty() {
			continue
		}
		draws = append(draws, r)
	}
	return draws
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
