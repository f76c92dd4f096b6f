// Package meshio writes tube meshes to interchange formats and reads binary
// STL files back for inspection.
package meshio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/tubegen/pkg/tube"
)

// Export errors.
var (
	ErrEmptyMesh     = errors.New("mesh has no geometry")
	ErrUnknownFormat = errors.New("unknown mesh format")
)

// Format is a mesh file format.
type Format string

// Supported formats.
const (
	FormatOBJ Format = "obj"
	FormatSTL Format = "stl"
)

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatOBJ:
		return FormatOBJ, nil
	case FormatSTL:
		return FormatSTL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// WriteFile writes m to path in the given format. name is used as the OBJ
// object name and the STL header.
func WriteFile(path string, m *tube.Mesh, format Format, name string) (err error) {
	if m == nil || m.IsEmpty() {
		return ErrEmptyMesh
	}
	if format, err = ParseFormat(string(format)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	switch format {
	case FormatSTL:
		return WriteSTL(f, m, name)
	default:
		return WriteOBJ(f, m, name)
	}
}
