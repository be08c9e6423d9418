package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshkit/internal/texture"
	"github.com/Faultbox/meshkit/pkg/encoding"
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/pipeline"
)

// sceneReport is the machine-readable summary of one bundle.
type sceneReport struct {
	Source      string           `yaml:"source" json:"source"`
	Vertices    int              `yaml:"vertices" json:"vertices"`
	Indices     int              `yaml:"indices" json:"indices"`
	Triangles   int              `yaml:"triangles" json:"triangles"`
	Bounds      boundsReport     `yaml:"bounds" json:"bounds"`
	Draws       []drawReport     `yaml:"draws" json:"draws"`
	Materials   []materialReport `yaml:"materials" json:"materials"`
	Diagnostics []string         `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
	Buffers     *bufferReport    `yaml:"buffers,omitempty" json:"buffers,omitempty"`
}

type boundsReport struct {
	Min    [3]float32 `yaml:"min,flow" json:"min"`
	Max    [3]float32 `yaml:"max,flow" json:"max"`
	Center [3]float32 `yaml:"center,flow" json:"center"`
	Size   [3]float32 `yaml:"size,flow" json:"size"`
}

type drawReport struct {
	Mesh        string `yaml:"mesh" json:"mesh"`
	Material    string `yaml:"material" json:"material"`
	IndexOffset uint32 `yaml:"index_offset" json:"index_offset"`
	IndexCount  uint32 `yaml:"index_count" json:"index_count"`
}

type materialReport struct {
	Name         string     `yaml:"name" json:"name"`
	Library      string     `yaml:"library,omitempty" json:"library,omitempty"`
	Ambient      [4]float32 `yaml:"ambient,flow" json:"ambient"`
	Diffuse      [4]float32 `yaml:"diffuse,flow" json:"diffuse"`
	Specular     [4]float32 `yaml:"specular,flow" json:"specular"`
	Shininess    float32    `yaml:"shininess" json:"shininess"`
	Opacity      float32    `yaml:"opacity" json:"opacity"`
	Texture      string     `yaml:"texture,omitempty" json:"texture,omitempty"`
	TexturePath  string     `yaml:"texture_path,omitempty" json:"texture_path,omitempty"`
	TextureFound bool       `yaml:"texture_found" json:"texture_found"`
}

type bufferReport struct {
	Positions [][3]float32 `yaml:"positions,flow" json:"positions"`
	Normals   [][3]float32 `yaml:"normals,flow" json:"normals"`
	TexCoords [][2]float32 `yaml:"texcoords,flow" json:"texcoords"`
	Materials []int32      `yaml:"materials,flow" json:"materials"`
	Indices   []uint32     `yaml:"indices,flow" json:"indices"`
}

// libraryPath returns the file an mtllib name refers to. Relative names are
// relative to the scene's directory.
func libraryPath(sceneDir, lib string) string {
	path := filepath.FromSlash(encoding.NormalizePath(lib))
	if !filepath.IsAbs(path) {
		path = filepath.Join(sceneDir, path)
	}
	return path
}

func vec2Array(v math.Vec2) [2]float32 { return [2]float32{v.X, v.Y} }
func vec3Array(v math.Vec3) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }
func vec4Array(v math.Vec4) [4]float32 { return [4]float32{v.X, v.Y, v.Z, v.W} }

// buildReport summarises b. Texture paths are resolved against the directory
// of the scene file. withBuffers adds the full vertex and index data.
func buildReport(b *pipeline.Bundle, scenePath string, textures *texture.Resolver, withBuffers bool) *sceneReport {
	r := &sceneReport{
		Source:    b.Source,
		Vertices:  len(b.Vertices),
		Indices:   len(b.Indices),
		Triangles: len(b.Indices) / 3,
		Bounds: boundsReport{
			Min:    vec3Array(b.Bounds.Min),
			Max:    vec3Array(b.Bounds.Max),
			Center: vec3Array(b.Bounds.Center()),
			Size:   vec3Array(b.Bounds.Size()),
		},
	}

	for i, dr := range b.DrawRanges {
		d := drawReport{
			IndexOffset: dr.IndexOffset,
			IndexCount:  dr.IndexCount,
		}
		if i < len(b.MeshNames) {
			d.Mesh = b.MeshNames[i]
		}
		if m, ok := b.Material(dr); ok {
			d.Material = m.Name
		}
		r.Draws = append(r.Draws, d)
	}

	sceneDir := filepath.Dir(scenePath)
	for _, m := range b.Materials {
		mr := materialReport{
			Name:      m.Name,
			Library:   m.Library,
			Ambient:   vec4Array(m.Ambient),
			Diffuse:   vec4Array(m.Diffuse),
			Specular:  vec4Array(m.Specular),
			Shininess: m.Shininess,
			Opacity:   m.Opacity,
			Texture:   m.DiffuseTexture,
		}
		if m.HasTexture() && textures != nil {
			dir := sceneDir
			if m.Library != "" {
				dir = filepath.Dir(libraryPath(sceneDir, m.Library))
			}
			mr.TexturePath, mr.TextureFound = textures.Resolve(dir, m.DiffuseTexture)
		}
		r.Materials = append(r.Materials, mr)
	}

	for _, d := range b.Diagnostics {
		r.Diagnostics = append(r.Diagnostics, d.String())
	}

	if withBuffers {
		buf := &bufferReport{Indices: b.Indices}
		for _, v := range b.Vertices {
			buf.Positions = append(buf.Positions, vec3Array(v.Position))
			buf.Normals = append(buf.Normals, vec3Array(v.Normal))
			buf.TexCoords = append(buf.TexCoords, vec2Array(v.TexCoord))
			buf.Materials = append(buf.Materials, v.MaterialIndex)
		}
		r.Buffers = buf
	}

	return r
}

// writeReport encodes v in the given format. Text is handled by the callers.
func writeReport(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeInfo prints the human-readable summary.
func writeInfo(w io.Writer, r *sceneReport) {
	fmt.Fprintf(w, "Scene:       %s\n", r.Source)
	fmt.Fprintf(w, "Vertices:    %d\n", r.Vertices)
	fmt.Fprintf(w, "Indices:     %d (%d triangles)\n", r.Indices, r.Triangles)
	fmt.Fprintf(w, "Meshes:      %d\n", len(r.Draws))
	fmt.Fprintf(w, "Materials:   %d\n", len(r.Materials))
	fmt.Fprintf(w, "Bounds:      %v - %v\n", r.Bounds.Min, r.Bounds.Max)
	fmt.Fprintf(w, "Center:      %v (size %v)\n", r.Bounds.Center, r.Bounds.Size)
	fmt.Fprintf(w, "Diagnostics: %d\n", len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

// writeRanges prints one line per draw range.
func writeRanges(w io.Writer, r *sceneReport) {
	fmt.Fprintf(w, "%-4s %-10s %-10s %-20s %s\n", "#", "OFFSET", "COUNT", "MATERIAL", "MESH")
	for i, d := range r.Draws {
		material := d.Material
		if material == "" {
			material = "(none)"
		}
		fmt.Fprintf(w, "%-4d %-10d %-10d %-20s %s\n", i, d.IndexOffset, d.IndexCount, material, d.Mesh)
	}
}

// writeMaterials prints one line per material with its texture status.
func writeMaterials(w io.Writer, r *sceneReport) {
	for i, m := range r.Materials {
		fmt.Fprintf(w, "%-4d %-20s Kd=%v Ns=%g d=%g\n", i, m.Name, m.Diffuse, m.Shininess, m.Opacity)
		switch {
		case m.Texture == "":
		case m.TextureFound:
			fmt.Fprintf(w, "     map_Kd %s -> %s\n", m.Texture, m.TexturePath)
		default:
			fmt.Fprintf(w, "     map_Kd %s (missing)\n", m.Texture)
		}
	}
}
