package mesh

// vertexKey is the content key used for welding. Floats are keyed by their
// bit patterns so equality is exact: -0 and +0 stay distinct, identical NaNs merge.
type vertexKey struct {
	position [3]uint32
	normal   [3]uint32
	texCoord [2]uint32
	material int32
}

func keyOf(v Vertex) vertexKey {
	return vertexKey{
		position: v.Position.Bits(),
		normal:   v.Normal.Bits(),
		texCoord: v.TexCoord.Bits(),
		material: v.MaterialIndex,
	}
}

// Weld deduplicates corners. It returns the unique vertices in first-seen
// order and one index per input corner.
func Weld(corners []Vertex) ([]Vertex, []uint32) {
	seen := make(map[vertexKey]uint32, len(corners))
	vertices := make([]Vertex, 0, len(corners))
	indices := make([]uint32, 0, len(corners))

	for _, v := range corners {
		k := keyOf(v)
		if idx, ok := seen[k]; ok {
			indices = append(indices, idx)
			continue
		}
		idx := uint32(len(vertices))
		seen[k] = idx
		vertices = append(vertices, v)
		indices = append(indices, idx)
	}

	return vertices, indices
}

// Reweld expands an indexed mesh back into corners and welds it again.
// Welding an already welded mesh returns the same vertices and indices.
func Reweld(m Mesh) Mesh {
	corners := make([]Vertex, len(m.Indices))
	for i, idx := range m.Indices {
		corners[i] = m.Vertices[idx]
	}
	m.Vertices, m.Indices = Weld(corners)
	return m
}

// NewMesh welds corners into a named mesh.
func NewMesh(name string, materialIndex int32, corners []Vertex) Mesh {
	vertices, indices := Weld(corners)
	return Mesh{
		Name:          name,
		MaterialIndex: materialIndex,
		Vertices:      vertices,
		Indices:       indices,
	}
}
