package formats

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/meshkit/pkg/math"
)

// mapOpener serves material libraries from memory.
func mapOpener(files map[string]string) MaterialOpener {
	return func(name string) (io.ReadCloser, error) {
		data, ok := files[name]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return io.NopCloser(strings.NewReader(data)), nil
	}
}

func parseString(t *testing.T, input string, libs map[string]string) *OBJ {
	t.Helper()
	obj, err := ParseOBJ(strings.NewReader(input), OBJOptions{Source: "test.obj", OpenMaterial: mapOpener(libs)})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return obj
}

func TestParseOBJ_Attributes(t *testing.T) {
	input := `# cube corner
v 1.0 2.0 3.0
v -1 -2 -3 1.0
vn 0 1 0
vt 0.25 0.75
vt 0.5 0.5 0
`
	obj := parseString(t, input, nil)

	if len(obj.Positions) != 2 || len(obj.Normals) != 1 || len(obj.TexCoords) != 2 {
		t.Fatalf("unexpected pool sizes: %d/%d/%d", len(obj.Positions), len(obj.Normals), len(obj.TexCoords))
	}
	if obj.Positions[1] != (math.Vec3{X: -1, Y: -2, Z: -3}) {
		t.Errorf("unexpected position %v", obj.Positions[1])
	}
	if obj.TexCoords[0] != (math.Vec2{X: 0.25, Y: 0.75}) {
		t.Errorf("unexpected texcoord %v", obj.TexCoords[0])
	}
	if len(obj.Meshes) != 0 {
		t.Errorf("expected no meshes without faces, got %d", len(obj.Meshes))
	}
	if len(obj.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", obj.Diagnostics)
	}
	if obj.Lines != 6 {
		t.Errorf("expected 6 lines, got %d", obj.Lines)
	}
}

func TestParseOBJ_MalformedLinesAreSkipped(t *testing.T) {
	input := "v 0 0 0\nv 1 0\nv 1 x 0\nvn 0 0\nvt 1\nv 1 1 0\n"
	obj := parseString(t, input, nil)

	if len(obj.Positions) != 2 {
		t.Errorf("expected 2 valid positions, got %d", len(obj.Positions))
	}
	wantLines := []int{2, 3, 4, 5}
	if len(obj.Diagnostics) != len(wantLines) {
		t.Fatalf("expected %d diagnostics, got %v", len(wantLines), obj.Diagnostics)
	}
	for i, line := range wantLines {
		if obj.Diagnostics[i].Line != line {
			t.Errorf("diagnostic %d: expected line %d, got %d", i, line, obj.Diagnostics[i].Line)
		}
	}
}

func TestParseOBJ_CornerForms(t *testing.T) {
	input := `v 0 0 0
v 1 0 0
v 1 1 0
vt 0 0
vt 1 0
vt 1 1
vn 0 0 1
f 1 2 3
f 1/1 2/2 3/3
f 1//1 2//1 3//1
f 1/1/1 2/2/1 3/3/1
f -3/-3/-1 -2/-2/-1 -1/-1/-1
`
	obj := parseString(t, input, nil)
	if len(obj.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", obj.Diagnostics)
	}
	if len(obj.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(obj.Meshes))
	}

	c := obj.Meshes[0].Corners
	if len(c) != 15 {
		t.Fatalf("expected 15 corners, got %d", len(c))
	}

	check := func(i int, want RawVertex) {
		t.Helper()
		got := c[i]
		if got.Position != want.Position || got.TexCoord != want.TexCoord || got.Normal != want.Normal {
			t.Errorf("corner %d = %+v, want p=%d t=%d n=%d", i, got, want.Position, want.TexCoord, want.Normal)
		}
	}
	check(0, RawVertex{Position: 0, TexCoord: NoIndex, Normal: NoIndex})
	check(4, RawVertex{Position: 1, TexCoord: 1, Normal: NoIndex})
	check(8, RawVertex{Position: 2, TexCoord: NoIndex, Normal: 0})
	check(9, RawVertex{Position: 0, TexCoord: 0, Normal: 0})
	// Relative indices resolve against the pool at the time of the face.
	check(12, RawVertex{Position: 0, TexCoord: 0, Normal: 0})
	check(14, RawVertex{Position: 2, TexCoord: 2, Normal: 0})
}

func TestParseOBJ_FanTriangulation(t *testing.T) {
	input := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nv -1 1 0\nf 1 2 3 4 5\n"
	obj := parseString(t, input, nil)

	m := obj.Meshes[0]
	if m.TriangleCount() != 3 {
		t.Fatalf("expected 3 triangles, got %d", m.TriangleCount())
	}
	want := []int{0, 1, 2, 0, 2, 3, 0, 3, 4}
	for i, c := range m.Corners {
		if c.Position != want[i] {
			t.Errorf("corner %d: expected position %d, got %d", i, want[i], c.Position)
		}
	}
}

func TestParseOBJ_BadFaces(t *testing.T) {
	tests := []struct {
		name string
		face string
	}{
		{"two corners", "f 1 2"},
		{"zero index", "f 0 1 2"},
		{"not a number", "f 1 a 2"},
		{"too many slashes", "f 1/1/1/1 2 3"},
		{"before pool start", "f -1 -2 -9"},
		{"zero normal", "f 1//0 2 3"},
		{"missing position", "f /1 2 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := parseString(t, "v 0 0 0\nv 1 0 0\nv 1 1 0\n"+tt.face+"\n", nil)
			if len(obj.Meshes) != 0 {
				t.Errorf("expected face to be skipped, got %d meshes", len(obj.Meshes))
			}
			if len(obj.Diagnostics) != 1 || obj.Diagnostics[0].Line != 4 {
				t.Errorf("expected one diagnostic on line 4, got %v", obj.Diagnostics)
			}
		})
	}
}

func TestParseOBJ_MeshBoundaries(t *testing.T) {
	libs := map[string]string{
		"scene.mtl": "newmtl red\nKd 1 0 0\nnewmtl blue\nKd 0 0 1\n",
	}
	input := `mtllib scene.mtl
v 0 0 0
v 1 0 0
v 1 1 0
o Cube
usemtl red
f 1 2 3
usemtl blue
f 1 2 3
f 1 3 2
g Empty
g Plane
f 1 2 3
usemtl red
`
	obj := parseString(t, input, libs)
	if len(obj.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", obj.Diagnostics)
	}

	want := []struct {
		name      string
		material  int32
		triangles int
	}{
		{"Cube", 0, 1},
		{"Cube", 1, 2},
		{"Plane", -1, 1},
	}
	if len(obj.Meshes) != len(want) {
		t.Fatalf("expected %d meshes, got %d", len(want), len(obj.Meshes))
	}
	for i, w := range want {
		m := obj.Meshes[i]
		if m.Name != w.name || m.MaterialIndex != w.material || m.TriangleCount() != w.triangles {
			t.Errorf("mesh %d = {%q, %d, %d tris}, want {%q, %d, %d tris}",
				i, m.Name, m.MaterialIndex, m.TriangleCount(), w.name, w.material, w.triangles)
		}
		for _, c := range m.Corners {
			if c.MaterialIndex != m.MaterialIndex {
				t.Errorf("mesh %d: corner material %d differs from mesh material %d", i, c.MaterialIndex, m.MaterialIndex)
			}
		}
	}
	if obj.Materials.Len() != 2 {
		t.Errorf("expected 2 materials, got %d", obj.Materials.Len())
	}
}

func TestParseOBJ_UnknownMaterial(t *testing.T) {
	input := "v 0 0 0\nv 1 0 0\nv 1 1 0\nusemtl foo\nf 1 2 3\n"
	obj := parseString(t, input, nil)

	if len(obj.Meshes) != 1 || obj.Meshes[0].MaterialIndex != -1 {
		t.Fatalf("expected one mesh without material, got %+v", obj.Meshes)
	}
	if len(obj.Diagnostics) != 1 || obj.Diagnostics[0].Line != 4 {
		t.Errorf("expected one diagnostic on line 4, got %v", obj.Diagnostics)
	}
}

func TestParseOBJ_MissingMaterialLibrary(t *testing.T) {
	input := "mtllib missing.mtl\nv 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 3\n"
	obj := parseString(t, input, map[string]string{})

	if obj.Materials.Len() != 0 {
		t.Errorf("expected empty catalog, got %d materials", obj.Materials.Len())
	}
	if len(obj.Meshes) != 1 {
		t.Errorf("expected geometry to be parsed, got %d meshes", len(obj.Meshes))
	}
	if len(obj.Diagnostics) != 1 || obj.Diagnostics[0].Line != 1 {
		t.Errorf("expected one diagnostic on line 1, got %v", obj.Diagnostics)
	}
}

func TestParseOBJ_NoOpener(t *testing.T) {
	obj, err := ParseOBJ(strings.NewReader("mtllib a.mtl\n"), OBJOptions{})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Diagnostics) != 1 || !strings.Contains(obj.Diagnostics[0].Message, ErrNoMaterialOpener.Error()) {
		t.Errorf("expected no-opener diagnostic, got %v", obj.Diagnostics)
	}
	if obj.Diagnostics[0].Source != "obj" {
		t.Errorf("expected default source name, got %q", obj.Diagnostics[0].Source)
	}
}

func TestParseOBJ_MaterialDiagnosticsForwarded(t *testing.T) {
	libs := map[string]string{"m.mtl": "newmtl a\nKd 1\n"}
	obj := parseString(t, "mtllib m.mtl\n", libs)

	if len(obj.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", obj.Diagnostics)
	}
	if d := obj.Diagnostics[0]; d.Source != "m.mtl" || d.Line != 2 {
		t.Errorf("unexpected diagnostic %v", d)
	}
}

func TestParseOBJ_MaterialLibrary(t *testing.T) {
	libs := map[string]string{
		"mats/a.mtl": "newmtl a\nmap_Kd t.png\nnewmtl shared\n",
		"b.mtl":      "newmtl b\nnewmtl shared\nmap_Kd s.png\n",
	}
	obj := parseString(t, "mtllib mats/a.mtl b.mtl\n", libs)

	tests := []struct {
		name    string
		library string
	}{
		{"a", "mats/a.mtl"},
		{"b", "b.mtl"},
		{"shared", "b.mtl"}, // the later library reopened it
	}
	for _, tt := range tests {
		m, ok := obj.Materials.Lookup(tt.name)
		if !ok {
			t.Fatalf("material %s not found", tt.name)
		}
		if m.Library != tt.library {
			t.Errorf("material %s: expected library %q, got %q", tt.name, tt.library, m.Library)
		}
	}
}

func TestParseOBJ_IgnoredAndUnknownStatements(t *testing.T) {
	obj := parseString(t, "s off\nl 1 2\nbogus 1 2 3\n", nil)
	if len(obj.Diagnostics) != 1 || obj.Diagnostics[0].Line != 3 {
		t.Errorf("expected one diagnostic for bogus statement, got %v", obj.Diagnostics)
	}
}

func TestParseOBJFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tri.mtl"), []byte("newmtl skin\nmap_Kd skin.png\n"), 0644); err != nil {
		t.Fatal(err)
	}
	scene := "mtllib tri.mtl\r\nv 0 0 0\r\nv 1 0 0\r\nv 1 1 0\r\nusemtl skin\r\nf 1 2 3\r\n"
	path := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(path, []byte(scene), 0644); err != nil {
		t.Fatal(err)
	}

	obj, err := ParseOBJFile(path)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}
	if len(obj.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", obj.Diagnostics)
	}
	if obj.Source != "tri.obj" {
		t.Errorf("expected source tri.obj, got %q", obj.Source)
	}
	mat, ok := obj.Materials.Lookup("skin")
	if !ok || mat.DiffuseTexture != "skin.png" {
		t.Errorf("expected skin material with texture, got %+v", mat)
	}
	if obj.Meshes[0].MaterialIndex != 0 {
		t.Errorf("expected material 0, got %d", obj.Meshes[0].MaterialIndex)
	}
}

func TestParseOBJFile_Missing(t *testing.T) {
	_, err := ParseOBJFile(filepath.Join(t.TempDir(), "nope.obj"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
