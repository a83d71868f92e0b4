// Package geom holds the planar polygon math shared by the canonicalizer,
// the boundary resolver and the surface writers. All points are sdfx
// vectors in world units.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Newell returns the Newell vector of a polygon. Its direction is the
// polygon normal (right hand rule over the loop) and its length is twice
// the polygon area.
func Newell(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Normal returns the unit normal of a polygon, or the zero vector when the
// polygon is degenerate.
func Normal(pts []v3.Vec) v3.Vec {
	n := Newell(pts)
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}

// Area returns the area of a planar polygon.
func Area(pts []v3.Vec) float64 {
	return Newell(pts).Length() / 2
}

// Centroid returns the vertex mean of a polygon.
func Centroid(pts []v3.Vec) v3.Vec {
	var c v3.Vec
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.DivScalar(float64(len(pts)))
}

// Basis returns two unit vectors spanning the plane with normal n. U is
// horizontal for any non-horizontal plane, which keeps frame offsets on
// walls aligned with the sill and jambs.
func Basis(n v3.Vec) (u, v v3.Vec) {
	up := v3.Vec{Z: 1}
	if math.Abs(n.Dot(up)) > 0.999 {
		up = v3.Vec{Y: 1}
	}
	u = up.Cross(n).Normalize()
	v = n.Cross(u).Normalize()
	return u, v
}

// Project maps polygon points into the 2D frame (origin, u, v).
func Project(pts []v3.Vec, origin, u, v v3.Vec) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		d := p.Sub(origin)
		out[i] = [2]float64{d.Dot(u), d.Dot(v)}
	}
	return out
}

// PointLineDistance returns the distance of p from the infinite line
// through a and b.
func PointLineDistance(p, a, b v3.Vec) float64 {
	ab := b.Sub(a)
	l := ab.Length()
	if l == 0 {
		return p.Sub(a).Length()
	}
	return ab.Cross(p.Sub(a)).Length() / l
}

// Key is a tolerance-quantized position used for coincidence tests.
type Key [3]int64

// Quantize snaps v onto a grid of spacing tol.
func Quantize(v v3.Vec, tol float64) Key {
	return Key{
		int64(math.Round(v.X / tol)),
		int64(math.Round(v.Y / tol)),
		int64(math.Round(v.Z / tol)),
	}
}

// Round rounds every component of v to the given number of decimals.
func Round(v v3.Vec, decimals int) v3.Vec {
	p := math.Pow(10, float64(decimals))
	return v3.Vec{
		X: math.Round(v.X*p) / p,
		Y: math.Round(v.Y*p) / p,
		Z: math.Round(v.Z*p) / p,
	}
}
