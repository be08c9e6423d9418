package formats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/meshkit/pkg/encoding"
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// ErrNoMaterialOpener is reported when a scene references a material library
// but the parser was given no way to open it.
var ErrNoMaterialOpener = errors.New("no material opener configured")

// MaterialOpener opens a material library named by an mtllib statement.
type MaterialOpener func(name string) (io.ReadCloser, error)

// DirOpener opens material libraries relative to dir. Absolute names are used as is.
func DirOpener(dir string) MaterialOpener {
	return func(name string) (io.ReadCloser, error) {
		name = filepath.FromSlash(encoding.NormalizePath(name))
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		return os.Open(name)
	}
}

// OBJOptions configures ParseOBJ.
type OBJOptions struct {
	// Source names the scene in diagnostics.
	Source string
	// OpenMaterial resolves mtllib statements. Nil disables material loading.
	OpenMaterial MaterialOpener
}

// RawMesh is a run of faces sharing a group name and material, already
// fan-triangulated: every three consecutive corners form one triangle.
type RawMesh struct {
	Name          string
	MaterialIndex int32
	Corners       []RawVertex
}

// TriangleCount returns the number of triangles in the mesh.
func (m *RawMesh) TriangleCount() int {
	return len(m.Corners) / 3
}

// OBJ represents a parsed Wavefront OBJ scene.
type OBJ struct {
	AttributePool

	Source       string
	Meshes       []RawMesh
	Materials    *MaterialCatalog
	MaterialLibs []string
	Diagnostics  []Diagnostic
	Lines        int
}

// objIgnored lists statements that are valid OBJ but carry nothing the mesh
// pipeline uses (smoothing groups, curves, free-form surfaces, display attributes).
var objIgnored = map[string]bool{
	"s": true, "l": true, "p": true, "vp": true,
	"cstype": true, "deg": true, "bmat": true, "step": true, "curv": true, "curv2": true,
	"surf": true, "parm": true, "trim": true, "hole": true, "scrv": true, "sp": true, "end": true,
	"con": true, "mg": true, "bevel": true, "c_interp": true, "d_interp": true, "lod": true,
	"shadow_obj": true, "trace_obj": true, "ctech": true, "stech": true, "maplib": true, "usemap": true,
}

// ParseOBJ parses an OBJ scene from r. Malformed statements are skipped and
// recorded in OBJ.Diagnostics. The error is non-nil only if reading r fails.
//
// Every "o", "g" or "usemtl" starts a new mesh. "o" and "g" clear the material;
// "usemtl" keeps the current object or group name, so one named object with
// several materials yields several meshes sharing that name.
func ParseOBJ(r io.Reader, opts OBJOptions) (*OBJ, error) {
	if opts.Source == "" {
		opts.Source = "obj"
	}

	p := &objParser{
		opts: opts,
		obj: &OBJ{
			Source:    opts.Source,
			Materials: NewMaterialCatalog(),
		},
		current: RawMesh{MaterialIndex: mesh.NoMaterial},
	}

	lines, err := scanStatements(r, p.statement)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.Source, err)
	}
	p.flush()
	p.obj.Lines = lines

	return p.obj, nil
}

// ParseOBJFile parses an OBJ file from disk. Material libraries are resolved
// relative to the file's directory.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	return ParseOBJ(f, OBJOptions{
		Source:       filepath.Base(path),
		OpenMaterial: DirOpener(filepath.Dir(path)),
	})
}

type objParser struct {
	opts    OBJOptions
	obj     *OBJ
	current RawMesh
	line    int
}

func (p *objParser) warn(format string, args ...any) {
	p.obj.Diagnostics = append(p.obj.Diagnostics, Diagnostic{
		Source:  p.opts.Source,
		Line:    p.line,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *objParser) statement(line int, fields []string) {
	p.line = line
	keyword, args := fields[0], fields[1:]

	switch keyword {
	case "v":
		if v, ok := p.vec3(keyword, args); ok {
			p.obj.Positions = append(p.obj.Positions, v)
		}
	case "vn":
		if v, ok := p.vec3(keyword, args); ok {
			p.obj.Normals = append(p.obj.Normals, v)
		}
	case "vt":
		uv, err := parseFloats(args, 2)
		if err != nil {
			p.warn("vt: %v, line skipped", err)
			return
		}
		p.obj.TexCoords = append(p.obj.TexCoords, math.Vec2{X: uv[0], Y: uv[1]})
	case "f":
		p.face(args)
	case "o", "g":
		p.flush()
		p.current = RawMesh{Name: strings.Join(args, " "), MaterialIndex: mesh.NoMaterial}
	case "usemtl":
		p.useMaterial(args)
	case "mtllib":
		p.materialLibs(args)
	default:
		if !objIgnored[keyword] {
			p.warn("unsupported statement %q", keyword)
		}
	}
}

func (p *objParser) vec3(keyword string, args []string) (math.Vec3, bool) {
	xyz, err := parseFloats(args, 3)
	if err != nil {
		p.warn("%s: %v, line skipped", keyword, err)
		return math.Vec3{}, false
	}
	return math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}

// flush moves the in-progress mesh into the mesh list if it has any corners.
func (p *objParser) flush() {
	if len(p.current.Corners) == 0 {
		return
	}
	p.obj.Meshes = append(p.obj.Meshes, p.current)
	p.current.Corners = nil
}

// useMaterial starts a mesh bound to the named material. The mesh keeps the
// current group name.
func (p *objParser) useMaterial(args []string) {
	if len(args) == 0 {
		p.warn("usemtl without a name, line skipped")
		return
	}
	name := strings.Join(args, " ")

	p.flush()
	idx := p.obj.Materials.Index(name)
	if idx == mesh.NoMaterial {
		p.warn("unknown material %q, mesh left without material", name)
	}
	p.current = RawMesh{Name: p.current.Name, MaterialIndex: idx}
}

func (p *objParser) materialLibs(names []string) {
	if len(names) == 0 {
		p.warn("mtllib without a file name")
		return
	}
	for _, name := range names {
		p.obj.MaterialLibs = append(p.obj.MaterialLibs, name)
		if err := p.loadMaterialLib(name); err != nil {
			p.warn("material library %q: %v", name, err)
		}
	}
}

func (p *objParser) loadMaterialLib(name string) error {
	if p.opts.OpenMaterial == nil {
		return ErrNoMaterialOpener
	}
	rc, err := p.opts.OpenMaterial(name)
	if err != nil {
		return err
	}
	defer rc.Close()

	diags, err := p.obj.Materials.Read(rc, name)
	p.obj.Diagnostics = append(p.obj.Diagnostics, diags...)
	return err
}

func (p *objParser) face(args []string) {
	if len(args) < 3 {
		p.warn("face needs at least 3 corners, got %d, line skipped", len(args))
		return
	}

	corners := make([]RawVertex, 0, len(args))
	for _, tok := range args {
		c, err := p.corner(tok)
		if err != nil {
			p.warn("face corner %q: %v, line skipped", tok, err)
			return
		}
		corners = append(corners, c)
	}

	p.current.Corners = append(p.current.Corners, mesh.FanTriangulate(corners)...)
}

// corner parses "p", "p/t", "p//n" or "p/t/n".
func (p *objParser) corner(tok string) (RawVertex, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return RawVertex{}, fmt.Errorf("too many components")
	}

	c := RawVertex{
		TexCoord:      NoIndex,
		Normal:        NoIndex,
		MaterialIndex: p.current.MaterialIndex,
		Line:          p.line,
	}

	var err error
	if c.Position, err = parseIndex(parts[0], len(p.obj.Positions)); err != nil {
		return RawVertex{}, fmt.Errorf("position: %w", err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.TexCoord, err = parseIndex(parts[1], len(p.obj.TexCoords)); err != nil {
			return RawVertex{}, fmt.Errorf("texcoord: %w", err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.Normal, err = parseIndex(parts[2], len(p.obj.Normals)); err != nil {
			return RawVertex{}, fmt.Errorf("normal: %w", err)
		}
	}

	return c, nil
}

func parseIndex(s string, count int) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing index")
	}
	raw, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return resolveIndex(raw, count)
}
