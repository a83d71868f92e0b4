package geom

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangulate splits a simple planar polygon into triangles by ear
// clipping and returns index triples into pts. Triangles keep the winding
// of the input loop. Polygons that cannot be clipped (self-intersecting or
// degenerate) fall back to a fan around the first vertex.
func Triangulate(pts []v3.Vec) [][3]int {
	n := len(pts)
	if n < 3 {
		return nil
	}
	if n == 3 {
		return [][3]int{{0, 1, 2}}
	}

	normal := Normal(pts)
	if normal == (v3.Vec{}) {
		return fan(n)
	}
	u, v := Basis(normal)
	p2 := Project(pts, pts[0], u, v)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var tris [][3]int
	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			a := idx[(i+len(idx)-1)%len(idx)]
			b := idx[i]
			c := idx[(i+1)%len(idx)]
			if !isEar(p2, idx, a, b, c) {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return fan(n)
		}
	}
	tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	return tris
}

func fan(n int) [][3]int {
	tris := make([][3]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}

// cross2 is the z component of (b-a) x (c-a).
func cross2(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func isEar(p [][2]float64, idx []int, a, b, c int) bool {
	// The projection frame follows the polygon normal, so convex corners
	// turn left.
	if cross2(p[a], p[b], p[c]) <= 1e-12 {
		return false
	}
	for _, k := range idx {
		if k == a || k == b || k == c {
			continue
		}
		if inTriangle(p[k], p[a], p[b], p[c]) {
			return false
		}
	}
	return true
}

func inTriangle(p, a, b, c [2]float64) bool {
	d1 := cross2(a, b, p)
	d2 := cross2(b, c, p)
	d3 := cross2(c, a, p)
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

// SignedVolume integrates the volume enclosed by a closed, outward wound
// triangle set using the divergence theorem.
func SignedVolume(tris [][3]v3.Vec) float64 {
	var vol float64
	for _, t := range tris {
		vol += t[0].Dot(t[1].Cross(t[2]))
	}
	return vol / 6
}

// IsSimple reports whether a projected loop has no repeated vertices and no
// crossing or touching non-adjacent edges.
func IsSimple(p [][2]float64, tol float64) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := p[i][0] - p[j][0]
			dy := p[i][1] - p[j][1]
			if dx*dx+dy*dy < tol*tol {
				return false
			}
		}
	}
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1, b2 := p[j], p[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

func segmentsIntersect(p1, p2, q1, q2 [2]float64) bool {
	d1 := cross2(q1, q2, p1)
	d2 := cross2(q1, q2, p2)
	d3 := cross2(p1, p2, q1)
	d4 := cross2(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) || (d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) || (d4 == 0 && onSegment(p1, p2, q2))
}

func onSegment(a, b, p [2]float64) bool {
	return p[0] >= min(a[0], b[0]) && p[0] <= max(a[0], b[0]) &&
		p[1] >= min(a[1], b[1]) && p[1] <= max(a[1], b[1])
}
