// Package export writes scene meshes to files: Wavefront OBJ with UVs and
// normals, JSON in the frontend's mesh format, or binary STL.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/welltube/pkg/kernel"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// ErrUnknownFormat is returned by Save for an unrecognised file extension.
var ErrUnknownFormat = errors.New("export: unknown format")

// ErrNoGeometry is returned when there is nothing to write.
var ErrNoGeometry = errors.New("export: no geometry")

// Formats lists the file extensions Save understands.
var Formats = []string{".obj", ".json", ".stl"}

// Save writes meshes to path, picking the format from its extension.
func Save(path string, meshes []*kernel.Mesh) error {
	ext := strings.ToLower(filepath.Ext(path))
	log := logging.L().With("component", "export", "path", path)

	switch ext {
	case ".stl":
		if err := SaveSTL(path, meshes); err != nil {
			return err
		}
	case ".obj", ".json":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if ext == ".obj" {
			err = WriteOBJ(f, meshes)
		} else {
			err = WriteJSON(f, meshes)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w %q, expected one of %s", ErrUnknownFormat, ext, strings.Join(Formats, ", "))
	}

	log.Info("meshes exported", "meshes", len(meshes))
	return nil
}

// WriteOBJ writes one object per mesh. Faces reference position, UV and
// normal by the same index when the mesh carries UVs and normals.
func WriteOBJ(w io.Writer, meshes []*kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# welltube")

	base := 1
	for i, m := range meshes {
		name := m.PartName
		if name == "" {
			name = fmt.Sprintf("mesh_%d", i)
		}
		fmt.Fprintf(bw, "o %s\n", strings.ReplaceAll(name, " ", "_"))

		n := m.VertexCount()
		for v := 0; v < n; v++ {
			fmt.Fprintf(bw, "v %g %g %g\n", m.Vertices[v*3], m.Vertices[v*3+1], m.Vertices[v*3+2])
		}
		hasUV := len(m.UVs) == n*2
		if hasUV {
			for v := 0; v < n; v++ {
				fmt.Fprintf(bw, "vt %g %g\n", m.UVs[v*2], m.UVs[v*2+1])
			}
		}
		hasNormals := len(m.Normals) == n*3
		if hasNormals {
			for v := 0; v < n; v++ {
				fmt.Fprintf(bw, "vn %g %g %g\n", m.Normals[v*3], m.Normals[v*3+1], m.Normals[v*3+2])
			}
		}

		for t := 0; t < m.TriangleCount(); t++ {
			bw.WriteString("f")
			for k := 0; k < 3; k++ {
				idx := int(m.Indices[t*3+k]) + base
				switch {
				case hasUV && hasNormals:
					fmt.Fprintf(bw, " %d/%d/%d", idx, idx, idx)
				case hasUV:
					fmt.Fprintf(bw, " %d/%d", idx, idx)
				case hasNormals:
					fmt.Fprintf(bw, " %d//%d", idx, idx)
				default:
					fmt.Fprintf(bw, " %d", idx)
				}
			}
			bw.WriteByte('\n')
		}
		base += n
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: obj: %w", err)
	}
	return nil
}

// Document is the JSON export layout.
type Document struct {
	Meshes []*kernel.Mesh `json:"meshes"`
}

// WriteJSON writes {"meshes": [...]} using the mesh JSON field names.
func WriteJSON(w io.Writer, meshes []*kernel.Mesh) error {
	if meshes == nil {
		meshes = []*kernel.Mesh{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Meshes: meshes}); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}

// Triangles flattens meshes into the triangle list the sdfx renderers use.
func Triangles(meshes []*kernel.Mesh) []*sdf.Triangle3 {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		for t := 0; t < m.TriangleCount(); t++ {
			tri := sdf.Triangle3{
				m.Position(int(m.Indices[t*3])),
				m.Position(int(m.Indices[t*3+1])),
				m.Position(int(m.Indices[t*3+2])),
			}
			tris = append(tris, &tri)
		}
	}
	return tris
}

// SaveSTL writes all meshes as one binary STL file.
func SaveSTL(path string, meshes []*kernel.Mesh) error {
	tris := Triangles(meshes)
	if len(tris) == 0 {
		return ErrNoGeometry
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export: stl: %w", err)
	}
	return nil
}
