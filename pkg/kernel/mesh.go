package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Face is a planar polygon of a Mesh. Loop indexes Mesh.Verts in winding
// order, Slot is the material slot of the owning object and ID is the stable
// face identifier (0 until one has been assigned).
type Face struct {
	Loop []int `json:"loop"`
	Slot int   `json:"slot"`
	ID   int   `json:"id,omitempty"`
}

// Mesh is a polygon mesh with per-face material slots.
type Mesh struct {
	Name  string   `json:"name,omitempty"`
	Verts []v3.Vec `json:"verts"`
	Faces []Face   `json:"faces"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Verts)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// FaceVerts returns the vertex positions of face i in loop order.
func (m *Mesh) FaceVerts(i int) []v3.Vec {
	f := m.Faces[i]
	pts := make([]v3.Vec, len(f.Loop))
	for j, vi := range f.Loop {
		pts[j] = m.Verts[vi]
	}
	return pts
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:  m.Name,
		Verts: append([]v3.Vec(nil), m.Verts...),
		Faces: make([]Face, len(m.Faces)),
	}
	for i, f := range m.Faces {
		c.Faces[i] = Face{Loop: append([]int(nil), f.Loop...), Slot: f.Slot, ID: f.ID}
	}
	return c
}

// AddFace appends a face built from world positions, sharing no vertices
// with existing faces. Vertex welding is the canonicalizer's job.
func (m *Mesh) AddFace(pts []v3.Vec, slot int) {
	loop := make([]int, len(pts))
	for i, p := range pts {
		loop[i] = len(m.Verts)
		m.Verts = append(m.Verts, p)
	}
	m.Faces = append(m.Faces, Face{Loop: loop, Slot: slot})
}

// Append adds all faces of o to m, remapping vertex indices. Slots are
// shifted by slotOffset so joined objects keep distinct material slots.
func (m *Mesh) Append(o *Mesh, slotOffset int) {
	base := len(m.Verts)
	m.Verts = append(m.Verts, o.Verts...)
	for _, f := range o.Faces {
		loop := make([]int, len(f.Loop))
		for i, vi := range f.Loop {
			loop[i] = vi + base
		}
		m.Faces = append(m.Faces, Face{Loop: loop, Slot: f.Slot + slotOffset, ID: f.ID})
	}
}
