package delim

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocmr/domain/encounter"
)

func TestParse_WhitespaceDelimited(t *testing.T) {
	input := "0 1 1 0\n0 0 1 0\n"
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 4 {
		t.Fatalf("shape = %dx%d, want 2x4", m.Rows(), m.Cols())
	}
	if m.At(0, 1) != 1 || m.At(1, 3) != 0 {
		t.Error("cells misparsed")
	}
}

func TestParse_CommaDelimitedWithNA(t *testing.T) {
	input := "0, NA, 1\n1, 0, .\n"
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.At(0, 1) != encounter.NA {
		t.Errorf("NA token parsed as %d", m.At(0, 1))
	}
	if m.At(1, 2) != encounter.NA {
		t.Errorf("dot token parsed as %d", m.At(1, 2))
	}
}

func TestParse_SkipsCommentsAndBlankLines(t *testing.T) {
	input := "# capture histories\n\n0 1\n1 0\n"
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", m.Rows())
	}
}

func TestParse_RejectsRaggedRows(t *testing.T) {
	if _, err := Parse(strings.NewReader("0 1\n0 1 1\n")); err == nil {
		t.Fatal("ragged table accepted")
	}
}

func TestParse_RejectsGarbage(t *testing.T) {
	if _, err := Parse(strings.NewReader("0 x 1\n")); err == nil {
		t.Fatal("non-numeric cell accepted")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	m, err := encounter.FromRows([][]int{{0, 1, encounter.NA}, {1, 0, 1}})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i := 0; i < m.Rows(); i++ {
		for tt := 0; tt < m.Cols(); tt++ {
			if back.At(i, tt) != m.At(i, tt) {
				t.Errorf("cell (%d,%d) = %d, want %d", i, tt, back.At(i, tt), m.At(i, tt))
			}
		}
	}
}

func TestReadMatrix_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.txt")
	if err := os.WriteFile(path, []byte("0 1\n1 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := NewReader().ReadMatrix(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadMatrix: %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", m.Rows(), m.Cols())
	}
}

func TestReadMatrix_MissingFile(t *testing.T) {
	if _, err := NewReader().ReadMatrix(context.Background(), "/nonexistent/capture.txt"); err == nil {
		t.Fatal("missing file accepted")
	}
}
