package mesh

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/meshkit/pkg/math"
)

// ErrIndexOverflow is returned when the assembled buffers cannot be addressed with 32-bit indices.
var ErrIndexOverflow = errors.New("mesh data exceeds 32-bit index range")

// Assemble concatenates meshes, in order, into one vertex buffer and one index
// buffer. Each mesh's local indices are offset by the number of vertices
// emitted before it, and one DrawRange is recorded per mesh, including meshes
// with no indices.
func Assemble(meshes []Mesh) (*Buffers, error) {
	var vertexCount, indexCount uint64
	for i := range meshes {
		vertexCount += uint64(len(meshes[i].Vertices))
		indexCount += uint64(len(meshes[i].Indices))
	}
	if vertexCount > gomath.MaxUint32 || indexCount > gomath.MaxUint32 {
		return nil, fmt.Errorf("%w: %d vertices, %d indices", ErrIndexOverflow, vertexCount, indexCount)
	}

	buf := &Buffers{
		Vertices:   make([]Vertex, 0, vertexCount),
		Indices:    make([]uint32, 0, indexCount),
		DrawRanges: make([]DrawRange, 0, len(meshes)),
	}

	var vertexOffset uint32
	for i := range meshes {
		m := &meshes[i]

		buf.Vertices = append(buf.Vertices, m.Vertices...)

		indexOffset := uint32(len(buf.Indices))
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Vertices) {
				return nil, fmt.Errorf("mesh %d (%q): index %d out of range (%d vertices)", i, m.Name, idx, len(m.Vertices))
			}
			buf.Indices = append(buf.Indices, idx+vertexOffset)
		}

		buf.DrawRanges = append(buf.DrawRanges, DrawRange{
			IndexOffset:   indexOffset,
			IndexCount:    uint32(len(m.Indices)),
			MaterialIndex: m.MaterialIndex,
		})

		vertexOffset += uint32(len(m.Vertices))
	}

	buf.Bounds = computeBounds(buf.Vertices)

	return buf, nil
}

// computeBounds returns the bounding box of all vertex positions.
// An empty vertex list has zero bounds.
func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}

	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for i := 1; i < len(vertices); i++ {
		updateBounds(&b, vertices[i].Position)
	}
	return b
}

func updateBounds(b *Bounds, p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}
