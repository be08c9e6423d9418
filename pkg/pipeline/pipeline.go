// Package pipeline turns an OBJ scene and its material libraries into one
// render-ready bundle: a flat vertex buffer, a flat index buffer, the
// material list and one draw range per mesh.
//
// Every call works on its own parser state, so concurrent calls on different
// files do not interfere.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// ErrEmptyPath is returned when Load is called without a scene path.
var ErrEmptyPath = errors.New("empty scene path")

// Options configures a pipeline run.
type Options struct {
	// Logger receives a summary and one warning per diagnostic. Nil disables logging.
	Logger *zap.Logger
	// GenerateNormals fills missing corner normals with the face normal.
	GenerateNormals bool
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Bundle is the output of one pipeline run.
type Bundle struct {
	Source      string
	Vertices    []mesh.Vertex
	Indices     []uint32
	Materials   []formats.Material
	DrawRanges  []mesh.DrawRange
	MeshNames   []string
	Bounds      mesh.Bounds
	Diagnostics []formats.Diagnostic

	// MaterialLibs lists the mtllib names as written in the scene.
	MaterialLibs []string
}

// Draws returns the draw ranges that have something to draw.
func (b *Bundle) Draws() []mesh.DrawRange {
	buf := mesh.Buffers{DrawRanges: b.DrawRanges}
	return buf.Draws()
}

// Material returns the material bound by a draw range, or false when the
// range has no material.
func (b *Bundle) Material(r mesh.DrawRange) (formats.Material, bool) {
	if r.MaterialIndex < 0 || int(r.MaterialIndex) >= len(b.Materials) {
		return formats.Material{}, false
	}
	return b.Materials[r.MaterialIndex], true
}

// Load reads the scene at path and builds a bundle. Material libraries are
// resolved relative to the scene's directory. A missing or unreadable scene
// is the only failure; everything else becomes a diagnostic.
func Load(path string, opts Options) (*Bundle, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", path, err)
	}
	return build(obj, opts)
}

// LoadReader builds a bundle from scene text. dir is used to resolve mtllib
// statements and name names the scene in diagnostics.
func LoadReader(r io.Reader, name, dir string, opts Options) (*Bundle, error) {
	obj, err := formats.ParseOBJ(r, formats.OBJOptions{
		Source:       name,
		OpenMaterial: formats.DirOpener(dir),
	})
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", name, err)
	}
	return build(obj, opts)
}

// LoadContext runs Load on its own goroutine and gives up when ctx is done.
// Parsing itself is not interrupted; an abandoned result is discarded.
func LoadContext(ctx context.Context, path string, opts Options) (*Bundle, error) {
	type result struct {
		bundle *Bundle
		err    error
	}

	done := make(chan result, 1)
	go func() {
		b, err := Load(path, opts)
		done <- result{b, err}
	}()

	select {
	case res := <-done:
		return res.bundle, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("loading scene %s: %w", filepath.Base(path), ctx.Err())
	}
}

// build welds each parsed mesh and assembles the result.
func build(obj *formats.OBJ, opts Options) (*Bundle, error) {
	log := opts.logger().With(zap.String("scene", obj.Source))

	diags := append([]formats.Diagnostic(nil), obj.Diagnostics...)
	resolve := formats.ResolveOptions{GenerateNormals: opts.GenerateNormals}

	meshes := make([]mesh.Mesh, 0, len(obj.Meshes))
	names := make([]string, 0, len(obj.Meshes))
	for i := range obj.Meshes {
		raw := &obj.Meshes[i]
		corners, d := obj.ResolveTriangles(obj.Source, raw.Corners, resolve)
		diags = append(diags, d...)

		meshes = append(meshes, mesh.NewMesh(raw.Name, raw.MaterialIndex, corners))
		names = append(names, raw.Name)
	}

	buf, err := mesh.Assemble(meshes)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", obj.Source, err)
	}

	bundle := &Bundle{
		Source:      obj.Source,
		Vertices:    buf.Vertices,
		Indices:     buf.Indices,
		Materials:   obj.Materials.Materials(),
		DrawRanges:  buf.DrawRanges,
		MeshNames:   names,
		Bounds:      buf.Bounds,
		Diagnostics: diags,

		MaterialLibs: append([]string(nil), obj.MaterialLibs...),
	}

	for _, d := range diags {
		log.Warn("scene diagnostic",
			zap.String("source", d.Source),
			zap.Int("line", d.Line),
			zap.String("reason", d.Message),
		)
	}
	log.Debug("scene loaded",
		zap.Int("lines", obj.Lines),
		zap.Int("positions", len(obj.Positions)),
		zap.Int("normals", len(obj.Normals)),
		zap.Int("texcoords", len(obj.TexCoords)),
		zap.Int("meshes", len(meshes)),
		zap.Int("materials", len(bundle.Materials)),
		zap.Int("vertices", len(bundle.Vertices)),
		zap.Int("indices", len(bundle.Indices)),
		zap.Int("diagnostics", len(diags)),
	)

	return bundle, nil
}
