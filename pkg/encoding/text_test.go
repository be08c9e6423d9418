package encoding

import (
	"io"
	"strings"
	"testing"
)

func TestNewTextReaderStripsBOM(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"with bom", "\ufeffv 1 2 3\n", "v 1 2 3\n"},
		{"without bom", "v 1 2 3\n", "v 1 2 3\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := io.ReadAll(NewTextReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %q, want %q", data, tt.want)
			}
		})
	}
}

func TestNewTextReaderUTF16(t *testing.T) {
	// "v 1" in UTF-16LE with BOM.
	input := []byte{0xFF, 0xFE, 'v', 0, ' ', 0, '1', 0}
	data, err := io.ReadAll(NewTextReader(strings.NewReader(string(input))))
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "v 1" {
		t.Errorf("got %q, want %q", data, "v 1")
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`textures\wood\oak.png`); got != "textures/wood/oak.png" {
		t.Errorf("NormalizePath() = %q", got)
	}
}
