// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx CAD library for transforms and triangle math.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/envi/pkg/geom"
	"github.com/chazu/envi/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// Matrix builds the object-to-world matrix for t: scale, then rotate
// (X, Y, Z Euler degrees), then translate.
func Matrix(t kernel.Transform) sdf.M44 {
	s := t.Scale
	if s == (v3.Vec{}) {
		s = v3.Vec{X: 1, Y: 1, Z: 1}
	}
	xRad := t.Rotation.X * math.Pi / 180.0
	yRad := t.Rotation.Y * math.Pi / 180.0
	zRad := t.Rotation.Z * math.Pi / 180.0

	rot := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return sdf.Translate3d(t.Translation).Mul(rot).Mul(sdf.Scale3d(s))
}

// Apply returns a copy of m with every vertex moved into world space.
func (k *SdfxKernel) Apply(m *kernel.Mesh, t kernel.Transform) *kernel.Mesh {
	out := m.Clone()
	mat := Matrix(t)
	for i, v := range out.Verts {
		out.Verts[i] = mat.MulPosition(v)
	}
	return out
}

// Triangulate ear-clips every face of m.
func (k *SdfxKernel) Triangulate(m *kernel.Mesh) ([]kernel.Triangle, error) {
	var tris []kernel.Triangle
	for i := range m.Faces {
		pts := m.FaceVerts(i)
		if len(pts) < 3 {
			return nil, fmt.Errorf("sdfx: face %d has %d vertices", i, len(pts))
		}
		for _, idx := range geom.Triangulate(pts) {
			tris = append(tris, kernel.Triangle{pts[idx[0]], pts[idx[1]], pts[idx[2]]})
		}
	}
	return tris, nil
}

// Volume integrates the enclosed volume of tris. Degenerate triangles
// (zero sdf normal) contribute nothing and are skipped.
func (k *SdfxKernel) Volume(tris []kernel.Triangle) float64 {
	solid := make([][3]v3.Vec, 0, len(tris))
	for _, t := range tris {
		st := sdf.Triangle3{t[0], t[1], t[2]}
		if st.Degenerate(1e-12) {
			continue
		}
		solid = append(solid, [3]v3.Vec(t))
	}
	return math.Abs(geom.SignedVolume(solid))
}

// SaveSTL writes tris as a binary STL file, for inspecting a zone's
// canonicalized shell in an external viewer.
func (k *SdfxKernel) SaveSTL(path string, tris []kernel.Triangle) error {
	mesh := make([]*sdf.Triangle3, 0, len(tris))
	for _, t := range tris {
		st := sdf.Triangle3{t[0], t[1], t[2]}
		mesh = append(mesh, &st)
	}
	if err := render.SaveSTL(path, mesh); err != nil {
		return fmt.Errorf("sdfx: save stl %s: %w", path, err)
	}
	return nil
}
