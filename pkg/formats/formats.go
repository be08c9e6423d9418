// Package formats provides parsers for the Wavefront OBJ scene format and its
// MTL material libraries.
package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/meshkit/pkg/encoding"
)

// maxLineSize bounds a single statement. Longer lines fail the read.
const maxLineSize = 1 << 20

// Diagnostic records a recoverable problem found while parsing.
// Line is 1-based within Source.
type Diagnostic struct {
	Source  string
	Line    int
	Message string
}

// String formats the diagnostic as "source(line): message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s(%d): %s", d.Source, d.Line, d.Message)
}

// scanStatements reads r line by line and calls fn with the whitespace
// separated fields of every line that is neither blank nor a comment.
// It returns the number of lines read.
func scanStatements(r io.Reader, fn func(line int, fields []string)) (int, error) {
	sc := bufio.NewScanner(encoding.NewTextReader(r))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		fn(line, fields)
	}
	return line, sc.Err()
}

// parseFloats parses the first n fields as 32-bit floats.
func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", fields[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}
