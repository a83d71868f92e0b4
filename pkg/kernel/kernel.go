// Package kernel defines the abstract geometry kernel interface.
// Implementations place object meshes in world space, triangulate them and
// integrate enclosed volume. The kernel abstraction lets the canonicalizer
// swap backends without changing the rest of the system.
package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Transform is an object-to-world placement. Rotation is a set of Euler
// angles in degrees applied X, then Y, then Z. A zero Scale is treated as
// unit scale.
type Transform struct {
	Translation v3.Vec `json:"translation"`
	Rotation    v3.Vec `json:"rotation"`
	Scale       v3.Vec `json:"scale"`
}

// Identity returns the transform that leaves geometry unchanged.
func Identity() Transform {
	return Transform{Scale: v3.Vec{X: 1, Y: 1, Z: 1}}
}

// Triangle is a single oriented triangle in world space.
type Triangle [3]v3.Vec

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Apply returns a copy of m with every vertex moved by t.
	Apply(m *Mesh, t Transform) *Mesh

	// Triangulate splits every face of m into triangles that keep the
	// face winding.
	Triangulate(m *Mesh) ([]Triangle, error)

	// Volume returns the enclosed volume of a closed triangle set.
	Volume(tris []Triangle) float64
}
