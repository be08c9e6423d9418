package texture

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCandidates(t *testing.T) {
	r := NewResolver(nil)

	got := r.Candidates("/scenes", "tex/wood")
	want := []string{
		filepath.Join("/scenes", "tex", "wood"),
		filepath.Join("/scenes", "tex", "wood.tga"),
		filepath.Join("/scenes", "tex", "wood.png"),
		filepath.Join("/scenes", "tex", "wood.jpg"),
		filepath.Join("/scenes", "tex", "wood.jpeg"),
		filepath.Join("/scenes", "tex", "wood.bmp"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCandidatesSkipOwnExtension(t *testing.T) {
	r := NewResolver([]string{".png", ".jpg"})

	got := r.Candidates("dir", "wood.PNG")
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %v", got)
	}
	if got[1] != filepath.Join("dir", "wood.PNG.jpg") {
		t.Errorf("unexpected candidate %s", got[1])
	}
}

func TestCandidatesEmpty(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Candidates("dir", "   "); got != nil {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "tex", "wood.png"))
	touch(t, filepath.Join(dir, "stone.bmp"))
	touch(t, filepath.Join(dir, "exact.dds"))

	r := NewResolver(nil)

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{`tex\wood`, filepath.Join(dir, "tex", "wood.png"), true},
		{"tex/wood.png", filepath.Join(dir, "tex", "wood.png"), true},
		{"stone", filepath.Join(dir, "stone.bmp"), true},
		{"exact.dds", filepath.Join(dir, "exact.dds"), true},
		{"missing", "", false},
		{"tex", "", false}, // directories do not count
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(dir, tt.name)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolveAbsolute(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "brick.tga")
	touch(t, abs)

	r := NewResolver(nil)
	got, ok := r.Resolve("/elsewhere", filepath.Join(dir, "brick"))
	if !ok || got != abs {
		t.Errorf("expected %s, got %s (ok=%v)", abs, got, ok)
	}
}
