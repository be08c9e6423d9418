package formats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Material is one named entry of an MTL library. It only carries the texture
// path; loading the image is left to the renderer.
type Material struct {
	Name           string
	Ambient        math.Vec4 // Ka
	Diffuse        math.Vec4 // Kd
	Specular       math.Vec4 // Ks
	Shininess      float32   // Ns
	Opacity        float32   // d, or 1-Tr
	DiffuseTexture string    // map_Kd

	// Library is the source name of the library that last defined the
	// material. Relative texture paths are relative to its directory.
	Library string
}

// NewMaterial returns a material with default values.
func NewMaterial(name string) Material {
	return Material{
		Name:      name,
		Ambient:   math.RGBA(0, 0, 0, 1),
		Diffuse:   math.RGBA(1, 1, 1, 1),
		Specular:  math.RGBA(1, 1, 1, 1),
		Shininess: 32,
		Opacity:   1,
	}
}

// HasTexture reports whether the material references a diffuse texture.
func (m *Material) HasTexture() bool {
	return m.DiffuseTexture != ""
}

// MaterialCatalog holds materials by name. Indices follow the order in which
// names were first defined, so the same input always yields the same indices.
type MaterialCatalog struct {
	materials []Material
	byName    map[string]int
}

// NewMaterialCatalog creates an empty catalog.
func NewMaterialCatalog() *MaterialCatalog {
	return &MaterialCatalog{byName: make(map[string]int)}
}

// ParseMTL parses a single material library into a new catalog.
// The error is non-nil only if reading r fails.
func ParseMTL(r io.Reader, source string) (*MaterialCatalog, []Diagnostic, error) {
	c := NewMaterialCatalog()
	diags, err := c.Read(r, source)
	if err != nil {
		return nil, diags, err
	}
	return c, diags, nil
}

// Len returns the number of materials.
func (c *MaterialCatalog) Len() int {
	return len(c.materials)
}

// Lookup returns a copy of the named material.
func (c *MaterialCatalog) Lookup(name string) (Material, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return Material{}, false
	}
	return c.materials[idx], true
}

// Index returns the index of the named material, or mesh.NoMaterial.
func (c *MaterialCatalog) Index(name string) int32 {
	idx, ok := c.byName[name]
	if !ok {
		return mesh.NoMaterial
	}
	return int32(idx)
}

// Materials returns the materials in index order.
func (c *MaterialCatalog) Materials() []Material {
	out := make([]Material, len(c.materials))
	copy(out, c.materials)
	return out
}

// Read parses material statements from r into the catalog. A name defined
// again reopens its existing record. The error is non-nil only if reading r fails.
func (c *MaterialCatalog) Read(r io.Reader, source string) ([]Diagnostic, error) {
	mr := &mtlReader{catalog: c, source: source, current: -1}
	if _, err := scanStatements(r, mr.statement); err != nil {
		return mr.diags, fmt.Errorf("reading %s: %w", source, err)
	}
	return mr.diags, nil
}

// mtlIgnored lists statements that are valid MTL but not used here.
var mtlIgnored = map[string]bool{
	"illum": true, "Ni": true, "Ke": true, "Tf": true, "sharpness": true,
	"map_Ka": true, "map_Ks": true, "map_Ns": true, "map_d": true, "map_Ke": true,
	"map_bump": true, "map_Bump": true, "bump": true, "disp": true, "decal": true, "refl": true, "norm": true,
	"Pr": true, "Pm": true, "Ps": true, "Pc": true, "Pcr": true, "aniso": true, "anisor": true,
	"map_Pr": true, "map_Pm": true, "map_Ps": true,
}

// textureOptionArgs is the maximum argument count of each texture map option.
var textureOptionArgs = map[string]int{
	"-blendu": 1, "-blendv": 1, "-boost": 1, "-cc": 1, "-clamp": 1,
	"-imfchan": 1, "-texres": 1, "-bm": 1, "-type": 1,
	"-mm": 2,
	"-o": 3, "-s": 3, "-t": 3,
}

type mtlReader struct {
	catalog *MaterialCatalog
	source  string
	current int
	line    int
	diags   []Diagnostic
}

func (r *mtlReader) warn(format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{Source: r.source, Line: r.line, Message: fmt.Sprintf(format, args...)})
}

func (r *mtlReader) statement(line int, fields []string) {
	r.line = line
	keyword, args := fields[0], fields[1:]

	if keyword == "newmtl" {
		r.newMaterial(args)
		return
	}
	if mtlIgnored[keyword] {
		return
	}

	var apply func(m *Material, args []string) error
	switch keyword {
	case "Ka":
		apply = colorSetter(func(m *Material) *math.Vec4 { return &m.Ambient })
	case "Kd":
		apply = colorSetter(func(m *Material) *math.Vec4 { return &m.Diffuse })
	case "Ks":
		apply = colorSetter(func(m *Material) *math.Vec4 { return &m.Specular })
	case "Ns":
		apply = scalarSetter(func(m *Material, v float32) { m.Shininess = v })
	case "d":
		apply = scalarSetter(func(m *Material, v float32) { m.Opacity = v })
	case "Tr":
		apply = scalarSetter(func(m *Material, v float32) { m.Opacity = 1 - v })
	case "map_Kd":
		apply = setDiffuseTexture
	default:
		r.warn("unsupported statement %q", keyword)
		return
	}

	if r.current < 0 {
		r.warn("%s before any newmtl, ignored", keyword)
		return
	}
	if err := apply(&r.catalog.materials[r.current], args); err != nil {
		r.warn("%s: %v", keyword, err)
	}
}

func (r *mtlReader) newMaterial(args []string) {
	if len(args) == 0 {
		r.warn("newmtl without a name")
		r.current = -1
		return
	}
	name := strings.Join(args, " ")

	c := r.catalog
	if idx, ok := c.byName[name]; ok {
		r.warn("material %q redefined, updating existing entry", name)
		r.current = idx
		c.materials[idx].Library = r.source
		return
	}

	m := NewMaterial(name)
	m.Library = r.source
	c.byName[name] = len(c.materials)
	c.materials = append(c.materials, m)
	r.current = len(c.materials) - 1
}

// colorSetter parses "r g b". Alpha is always 1.
func colorSetter(field func(m *Material) *math.Vec4) func(m *Material, args []string) error {
	return func(m *Material, args []string) error {
		rgb, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		*field(m) = math.RGBA(rgb[0], rgb[1], rgb[2], 1)
		return nil
	}
}

func scalarSetter(set func(m *Material, v float32)) func(m *Material, args []string) error {
	return func(m *Material, args []string) error {
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		set(m, v[0])
		return nil
	}
}

func setDiffuseTexture(m *Material, args []string) error {
	path := texturePath(args)
	if path == "" {
		return fmt.Errorf("missing file name")
	}
	m.DiffuseTexture = path
	return nil
}

// texturePath strips texture map options and returns the file name that follows.
func texturePath(fields []string) string {
	i := 0
	for i < len(fields) && strings.HasPrefix(fields[i], "-") {
		n, known := textureOptionArgs[fields[i]]
		i++
		if !known {
			continue
		}
		for j := 0; j < n && i < len(fields); j++ {
			// -o, -s and -t take one to three numbers.
			if n == 3 && j > 0 {
				if _, err := strconv.ParseFloat(fields[i], 32); err != nil {
					break
				}
			}
			i++
		}
	}
	return strings.Join(fields[i:], " ")
}
