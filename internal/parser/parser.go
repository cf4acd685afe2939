package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fran6w/pandas-method-chaining/internal/ir"
	"github.com/fran6w/pandas-method-chaining/internal/pyast"
)

type Diagnostics struct {
	Warnings []string
}

// Parse walks path for Python sources and parses each one. A file that fails
// to parse becomes a warning and is skipped; the rest of the run is
// unaffected.
func Parse(path string) ([]pyast.File, Diagnostics) {
	var files []pyast.File
	diags := Diagnostics{}

	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".py") {
			return nil
		}
		f, perr := ParseFile(p)
		if perr != nil {
			diags.Warnings = append(diags.Warnings, perr.Error())
			return nil
		}
		files = append(files, *f)
		return nil
	})

	if len(files) == 0 {
		diags.Warnings = append(diags.Warnings, "no Python files found under "+filepath.Clean(path))
	}
	return files, diags
}

func ParseFile(path string) (*pyast.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseSource(path, src)
}

// FileMeta builds the run-level file entry for a parsed script.
func FileMeta(f *pyast.File) ir.File {
	lines := len(f.Lines)
	if lines > 0 && f.Lines[lines-1] == "" {
		lines--
	}
	return ir.File{Path: f.Path, Lines: lines}
}
