package formats

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// NoIndex marks an absent texture coordinate or normal reference.
const NoIndex = -1

// Attribute index errors.
var (
	ErrZeroIndex       = errors.New("index 0 is not valid")
	ErrIndexBeforePool = errors.New("relative index points before the first element")
)

// AttributePool holds vertex attributes in declaration order.
type AttributePool struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
}

// RawVertex is one face corner as declared: 0-based attribute indices plus
// the material active at the time. TexCoord and Normal are NoIndex when absent.
type RawVertex struct {
	Position      int
	TexCoord      int
	Normal        int
	MaterialIndex int32
	Line          int
}

// ResolveOptions controls how corners are turned into vertices.
type ResolveOptions struct {
	// GenerateNormals gives corners without a usable normal the geometric
	// normal of their triangle instead of the zero vector.
	GenerateNormals bool
}

// resolveIndex converts an OBJ index into a 0-based one. Positive indices are
// 1-based, negative indices count back from the current end of the pool.
// Positive indices are not bounds checked so that forward references survive
// until the whole file is read.
func resolveIndex(raw, count int) (int, error) {
	switch {
	case raw > 0:
		return raw - 1, nil
	case raw < 0:
		idx := count + raw
		if idx < 0 {
			return 0, fmt.Errorf("%w: %d with %d defined", ErrIndexBeforePool, raw, count)
		}
		return idx, nil
	default:
		return 0, ErrZeroIndex
	}
}

// ResolveTriangles looks up the attributes of triangulated corners.
// A triangle referencing a missing position is dropped. Missing texture
// coordinates and normals fall back to zero. Each problem is reported as a
// diagnostic attributed to source.
func (p *AttributePool) ResolveTriangles(source string, corners []RawVertex, opts ResolveOptions) ([]mesh.Vertex, []Diagnostic) {
	var diags []Diagnostic
	report := func(line int, format string, args ...any) {
		diags = append(diags, Diagnostic{Source: source, Line: line, Message: fmt.Sprintf(format, args...)})
	}

	out := make([]mesh.Vertex, 0, len(corners))
	for t := 0; t+2 < len(corners); t += 3 {
		var tri [3]mesh.Vertex
		var missingNormal [3]bool
		valid := true

		for i := 0; i < 3; i++ {
			c := corners[t+i]
			if c.Position < 0 || c.Position >= len(p.Positions) {
				report(c.Line, "position index %d out of range (%d positions), triangle dropped", c.Position+1, len(p.Positions))
				valid = false
				break
			}

			v := mesh.Vertex{
				Position:      p.Positions[c.Position],
				MaterialIndex: c.MaterialIndex,
			}

			if c.TexCoord != NoIndex {
				if c.TexCoord < len(p.TexCoords) {
					v.TexCoord = p.TexCoords[c.TexCoord]
				} else {
					report(c.Line, "texcoord index %d out of range (%d texcoords), using zero", c.TexCoord+1, len(p.TexCoords))
				}
			}

			switch {
			case c.Normal == NoIndex:
				missingNormal[i] = true
			case c.Normal < len(p.Normals):
				v.Normal = p.Normals[c.Normal]
			default:
				report(c.Line, "normal index %d out of range (%d normals), using zero", c.Normal+1, len(p.Normals))
				missingNormal[i] = true
			}

			tri[i] = v
		}

		if !valid {
			continue
		}

		if opts.GenerateNormals && (missingNormal[0] || missingNormal[1] || missingNormal[2]) {
			n := mesh.FaceNormal(tri[0].Position, tri[1].Position, tri[2].Position)
			for i := range tri {
				if missingNormal[i] {
					tri[i].Normal = n
				}
			}
		}

		out = append(out, tri[:]...)
	}

	return out, diags
}
