package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(size float64) []v3.Vec {
	return []v3.Vec{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
}

func TestNormalAndArea(t *testing.T) {
	pts := square(2)
	n := Normal(pts)
	assert.InDelta(t, 1.0, n.Z, 1e-12)
	assert.InDelta(t, 4.0, Area(pts), 1e-12)

	rev := []v3.Vec{pts[3], pts[2], pts[1], pts[0]}
	assert.InDelta(t, -1.0, Normal(rev).Z, 1e-12)
}

func TestNormalDegenerate(t *testing.T) {
	pts := []v3.Vec{{X: 0}, {X: 1}, {X: 2}}
	assert.Equal(t, v3.Vec{}, Normal(pts))
	assert.Zero(t, Area(pts))
}

func TestCentroid(t *testing.T) {
	c := Centroid(square(2))
	assert.Equal(t, v3.Vec{X: 1, Y: 1}, c)
}

func TestBasisIsOrthonormal(t *testing.T) {
	for _, n := range []v3.Vec{{X: 1}, {Y: -1}, {Z: 1}, v3.Vec{X: 1, Y: 1, Z: 1}.Normalize()} {
		u, v := Basis(n)
		assert.InDelta(t, 1.0, u.Length(), 1e-9)
		assert.InDelta(t, 1.0, v.Length(), 1e-9)
		assert.InDelta(t, 0.0, u.Dot(v), 1e-9)
		assert.InDelta(t, 0.0, u.Dot(n), 1e-9)
		w := u.Cross(v)
		assert.InDelta(t, 1.0, w.Dot(n), 1e-9, "basis must be right handed around %v", n)
	}
}

func TestBasisWallIsHorizontal(t *testing.T) {
	u, _ := Basis(v3.Vec{Y: -1})
	assert.InDelta(t, 0.0, u.Z, 1e-12)
}

func TestTriangulateConcave(t *testing.T) {
	// L-shaped floor, area 3.
	pts := []v3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	tris := Triangulate(pts)
	require.Len(t, tris, 4)

	var area float64
	for _, tri := range tris {
		tp := []v3.Vec{pts[tri[0]], pts[tri[1]], pts[tri[2]]}
		n := Newell(tp)
		assert.Greater(t, n.Z, 0.0, "triangle %v flipped", tri)
		area += n.Length() / 2
	}
	assert.InDelta(t, 3.0, area, 1e-9)
}

func TestTriangulateSmall(t *testing.T) {
	assert.Nil(t, Triangulate(square(1)[:2]))
	assert.Equal(t, [][3]int{{0, 1, 2}}, Triangulate(square(1)[:3]))
}

func TestSignedVolumeUnitCube(t *testing.T) {
	c := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }
	quads := [][]v3.Vec{
		{c(0, 0, 0), c(0, 1, 0), c(1, 1, 0), c(1, 0, 0)}, // bottom, facing -Z
		{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}, // top
		{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}, // front, -Y
		{c(1, 1, 0), c(0, 1, 0), c(0, 1, 1), c(1, 1, 1)}, // back
		{c(0, 1, 0), c(0, 0, 0), c(0, 0, 1), c(0, 1, 1)}, // left, -X
		{c(1, 0, 0), c(1, 1, 0), c(1, 1, 1), c(1, 0, 1)}, // right
	}
	var tris [][3]v3.Vec
	for _, q := range quads {
		for _, tri := range Triangulate(q) {
			tris = append(tris, [3]v3.Vec{q[tri[0]], q[tri[1]], q[tri[2]]})
		}
	}
	assert.InDelta(t, 1.0, SignedVolume(tris), 1e-9)
}

func TestIsSimple(t *testing.T) {
	sq := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	assert.True(t, IsSimple(sq, 1e-6))

	bowtie := [][2]float64{{0, 0}, {1, 1}, {1, 0}, {0, 1}}
	assert.False(t, IsSimple(bowtie, 1e-6))

	repeated := [][2]float64{{0, 0}, {1, 0}, {0, 0}, {0, 1}}
	assert.False(t, IsSimple(repeated, 1e-6))
}

func TestQuantizeAndRound(t *testing.T) {
	a := Quantize(v3.Vec{X: 1.0001, Y: 2, Z: 3}, 0.01)
	b := Quantize(v3.Vec{X: 0.9999, Y: 2, Z: 3}, 0.01)
	assert.Equal(t, a, b)

	r := Round(v3.Vec{X: 1.23456, Y: -0.0004, Z: 2}, 3)
	assert.InDelta(t, 1.235, r.X, 1e-12)
	assert.InDelta(t, 0.0, r.Y, 1e-12)
}

func TestPointLineDistance(t *testing.T) {
	d := PointLineDistance(v3.Vec{X: 0.5, Y: 1}, v3.Vec{}, v3.Vec{X: 1})
	assert.InDelta(t, 1.0, d, 1e-12)
	assert.False(t, math.IsNaN(PointLineDistance(v3.Vec{X: 1}, v3.Vec{}, v3.Vec{})))
}
