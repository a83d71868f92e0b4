package canon

import (
	"math"

	"github.com/chazu/envi/pkg/geom"
	"github.com/chazu/envi/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Mesh cleanup operations. Each works in place and returns how many
// elements it changed.
// ---------------------------------------------------------------------------

// MergeVertices welds vertices closer than tol. Faces that collapse below
// three distinct vertices are removed.
func MergeVertices(m *kernel.Mesh, tol float64) int {
	if tol <= 0 || len(m.Verts) == 0 {
		return 0
	}

	cells := make(map[geom.Key][]int)
	remap := make([]int, len(m.Verts))
	merged := 0

	for i, v := range m.Verts {
		k := geom.Quantize(v, tol)
		target := -1
	search:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, j := range cells[geom.Key{k[0] + dx, k[1] + dy, k[2] + dz}] {
						if m.Verts[j].Sub(v).Length() <= tol {
							target = j
							break search
						}
					}
				}
			}
		}
		if target < 0 {
			remap[i] = i
			cells[k] = append(cells[k], i)
			continue
		}
		remap[i] = target
		merged++
	}

	for fi := range m.Faces {
		loop := make([]int, len(m.Faces[fi].Loop))
		for j, vi := range m.Faces[fi].Loop {
			loop[j] = remap[vi]
		}
		m.Faces[fi].Loop = compactLoop(loop)
	}
	DeleteFaces(m, func(f kernel.Face) bool { return len(f.Loop) < 3 })
	return merged
}

// compactLoop drops consecutive repeated indices, including the wrap from
// last to first.
func compactLoop(loop []int) []int {
	out := make([]int, 0, len(loop))
	for _, vi := range loop {
		if len(out) > 0 && out[len(out)-1] == vi {
			continue
		}
		out = append(out, vi)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// SplitMaterialEdges duplicates every vertex shared by faces of different
// material slots so no edge joins two materials.
func SplitMaterialEdges(m *kernel.Mesh) int {
	owner := make(map[int]int) // vertex -> first slot seen
	copies := make(map[[2]int]int)
	split := 0

	for fi := range m.Faces {
		f := &m.Faces[fi]
		for j, vi := range f.Loop {
			slot, seen := owner[vi]
			if !seen {
				owner[vi] = f.Slot
				continue
			}
			if slot == f.Slot {
				continue
			}
			key := [2]int{vi, f.Slot}
			ni, ok := copies[key]
			if !ok {
				ni = len(m.Verts)
				m.Verts = append(m.Verts, m.Verts[vi])
				copies[key] = ni
				split++
			}
			f.Loop[j] = ni
		}
	}
	return split
}

// DissolveDegenerate removes edges shorter than tol by dropping their
// second vertex from the loop, then deletes faces left with fewer than
// three vertices or with an area below tol squared.
func DissolveDegenerate(m *kernel.Mesh, tol float64) int {
	changed := 0
	for fi := range m.Faces {
		f := &m.Faces[fi]
		out := make([]int, 0, len(f.Loop))
		for _, vi := range f.Loop {
			if len(out) > 0 && m.Verts[out[len(out)-1]].Sub(m.Verts[vi]).Length() < tol {
				changed++
				continue
			}
			out = append(out, vi)
		}
		for len(out) > 1 && m.Verts[out[0]].Sub(m.Verts[out[len(out)-1]]).Length() < tol {
			out = out[:len(out)-1]
			changed++
		}
		f.Loop = out
	}
	changed += DeleteFaces(m, func(f kernel.Face) bool {
		if len(f.Loop) < 3 {
			return true
		}
		return geom.Area(loopVerts(m, f.Loop)) < tol*tol
	})
	return changed
}

// DissolveLimit merges pairs of same-slot faces that share exactly one
// edge and whose normals differ by less than angle radians, provided the
// merged loop stays simple. Vertices left between two collinear edges are
// then dissolved. Faces of different slots are never merged.
func DissolveLimit(m *kernel.Mesh, angle float64) int {
	merged := 0
	for {
		a, b, loop, ok := findMergeable(m, angle)
		if !ok {
			break
		}
		m.Faces[a].Loop = loop
		m.Faces = append(m.Faces[:b], m.Faces[b+1:]...)
		merged++
	}
	return merged + dissolveCollinear(m, angle)
}

type edge [2]int

func undirected(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// findMergeable returns the first face pair (a < b) that can be merged and
// the merged loop.
func findMergeable(m *kernel.Mesh, angle float64) (int, int, []int, bool) {
	edgeFaces := make(map[edge][]int)
	for fi, f := range m.Faces {
		for j, vi := range f.Loop {
			e := undirected(vi, f.Loop[(j+1)%len(f.Loop)])
			edgeFaces[e] = append(edgeFaces[e], fi)
		}
	}

	normals := make([]v3.Vec, len(m.Faces))
	for fi, f := range m.Faces {
		normals[fi] = geom.Normal(loopVerts(m, f.Loop))
	}

	for a, fa := range m.Faces {
		for j, vi := range fa.Loop {
			e := undirected(vi, fa.Loop[(j+1)%len(fa.Loop)])
			fs := edgeFaces[e]
			if len(fs) != 2 {
				continue
			}
			b := fs[0]
			if b == a {
				b = fs[1]
			}
			if b <= a || m.Faces[b].Slot != fa.Slot {
				continue
			}
			if angleBetween(normals[a], normals[b]) >= angle {
				continue
			}
			loop, ok := joinLoops(fa.Loop, m.Faces[b].Loop)
			if !ok {
				continue
			}
			n := normals[a]
			u, v := geom.Basis(n)
			pts := loopVerts(m, loop)
			if !geom.IsSimple(geom.Project(pts, pts[0], u, v), 1e-9) {
				continue
			}
			return a, b, loop, true
		}
	}
	return 0, 0, nil, false
}

// joinLoops merges two loops of opposite winding along their single shared
// edge. It fails when they share no edge, more than one vertex pair, or
// when the result would revisit a vertex.
func joinLoops(la, lb []int) ([]int, bool) {
	inB := make(map[int]int, len(lb))
	for i, vi := range lb {
		inB[vi] = i
	}
	shared := 0
	for _, vi := range la {
		if _, ok := inB[vi]; ok {
			shared++
		}
	}
	if shared != 2 {
		return nil, false
	}

	// Find edge p->q in la where lb runs q->p.
	for i, p := range la {
		q := la[(i+1)%len(la)]
		bi, okp := inB[p]
		bj, okq := inB[q]
		if !okp || !okq || (bj+1)%len(lb) != bi {
			continue
		}
		out := make([]int, 0, len(la)+len(lb)-2)
		// la from q round to p.
		for k := 0; k < len(la); k++ {
			out = append(out, la[(i+1+k)%len(la)])
		}
		// lb strictly between p and q.
		for k := 1; k < len(lb)-1; k++ {
			out = append(out, lb[(bi+k)%len(lb)])
		}
		return out, true
	}
	return nil, false
}

// dissolveCollinear removes vertices that every face using them passes
// straight through with the same two neighbours.
func dissolveCollinear(m *kernel.Mesh, angle float64) int {
	type nb struct {
		pair edge
		ok   bool
	}
	uses := make(map[int]*nb)
	for _, f := range m.Faces {
		n := len(f.Loop)
		for j, vi := range f.Loop {
			pair := undirected(f.Loop[(j+n-1)%n], f.Loop[(j+1)%n])
			u := uses[vi]
			if u == nil {
				uses[vi] = &nb{pair: pair, ok: true}
				continue
			}
			if u.pair != pair {
				u.ok = false
			}
		}
	}

	drop := make(map[int]bool)
	for vi, u := range uses {
		if !u.ok {
			continue
		}
		p, q := m.Verts[u.pair[0]], m.Verts[u.pair[1]]
		c := m.Verts[vi]
		if angleBetween(c.Sub(p), q.Sub(c)) < angle {
			drop[vi] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	removed := 0
	for fi := range m.Faces {
		f := &m.Faces[fi]
		out := make([]int, 0, len(f.Loop))
		for _, vi := range f.Loop {
			if !drop[vi] {
				out = append(out, vi)
			}
		}
		// A face reduced below a triangle is degenerate and is left for
		// the small-face pass.
		if len(out) < 3 {
			continue
		}
		removed += len(f.Loop) - len(out)
		f.Loop = out
	}
	return removed
}

// DeleteLoose removes vertices used by no face and compacts indices.
func DeleteLoose(m *kernel.Mesh) int {
	used := make([]bool, len(m.Verts))
	for _, f := range m.Faces {
		for _, vi := range f.Loop {
			used[vi] = true
		}
	}
	remap := make([]int, len(m.Verts))
	verts := m.Verts[:0:0]
	for i, v := range m.Verts {
		if !used[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(verts)
		verts = append(verts, v)
	}
	removed := len(m.Verts) - len(verts)
	m.Verts = verts
	for fi := range m.Faces {
		for j, vi := range m.Faces[fi].Loop {
			m.Faces[fi].Loop[j] = remap[vi]
		}
	}
	return removed
}

// DeleteSmallFaces removes faces with an area below minArea.
func DeleteSmallFaces(m *kernel.Mesh, minArea float64) int {
	return DeleteFaces(m, func(f kernel.Face) bool {
		return geom.Area(loopVerts(m, f.Loop)) < minArea
	})
}

// DeleteFaces removes every face for which drop returns true.
func DeleteFaces(m *kernel.Mesh, drop func(f kernel.Face) bool) int {
	kept := m.Faces[:0]
	removed := 0
	for _, f := range m.Faces {
		if drop(f) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	m.Faces = kept
	return removed
}

func loopVerts(m *kernel.Mesh, loop []int) []v3.Vec {
	pts := make([]v3.Vec, len(loop))
	for i, vi := range loop {
		pts[i] = m.Verts[vi]
	}
	return pts
}

// angleBetween returns the angle between a and b in radians, or pi when
// either is zero.
func angleBetween(a, b v3.Vec) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return math.Pi
	}
	c := a.Dot(b) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}
