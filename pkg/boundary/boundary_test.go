package boundary

import (
	"testing"

	"github.com/chazu/envi/pkg/graph"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	kinds []string
}

func (r *recorder) Warn(kind, subject, message string) {
	r.kinds = append(r.kinds, kind)
}

func quad(x float64) []v3.Vec {
	return []v3.Vec{{X: x, Y: 0, Z: 0}, {X: x, Y: 2, Z: 0}, {X: x, Y: 2, Z: 2}, {X: x, Y: 0, Z: 2}}
}

func reversed(pts []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Outdoors", Outdoors.String())
	assert.Equal(t, "Surface", OtherSurface.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestAdjacent(t *testing.T) {
	a := quad(4)
	tests := []struct {
		name string
		b    []v3.Vec
		want bool
	}{
		{"opposed", reversed(a), true},
		{"same facing", a, false},
		{"within tolerance", reversed([]v3.Vec{{X: 4.004}, {X: 4, Y: 2}, {X: 4, Y: 2, Z: 2}, {X: 4, Z: 2}}), true},
		{"shifted", reversed(quad(5)), false},
		{"triangle", reversed(a[:3]), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Adjacent(a, tt.b, 0.01))
		})
	}
}

func TestResolveSymmetricPair(t *testing.T) {
	r := NewResolver(0.01, nil, nil)
	r.Add(Surface{Name: "EN_A_3", Zone: "EN_A", Boundary: graph.BoundExternal, Points: quad(4)})
	r.Add(Surface{Name: "EN_A_1", Zone: "EN_A", Boundary: graph.BoundExternal, Points: quad(0)})
	r.Add(Surface{Name: "EN_B_5", Zone: "EN_B", Boundary: graph.BoundZone, Points: reversed(quad(4))})

	got := r.Resolve()
	require.Len(t, got, 3)
	assert.Equal(t, Condition{Kind: OtherSurface, Object: "EN_B_5", SunExposure: NoSun, WindExposure: NoWind}, got["EN_A_3"])
	assert.Equal(t, Condition{Kind: OtherSurface, Object: "EN_A_3", SunExposure: NoSun, WindExposure: NoWind}, got["EN_B_5"])
	assert.Equal(t, Condition{Kind: Outdoors, SunExposure: SunExposed, WindExposure: WindExposed}, got["EN_A_1"])
}

func TestResolveUnmatched(t *testing.T) {
	rec := &recorder{}
	r := NewResolver(0.01, nil, rec)
	r.Add(Surface{Name: "g", Boundary: graph.BoundGround, Points: quad(0)})
	r.Add(Surface{Name: "a", Boundary: graph.BoundAdiabatic, Points: quad(1)})
	r.Add(Surface{Name: "z", Boundary: graph.BoundZone, Points: quad(2)})
	// a ground face never pairs, even when coincident
	r.Add(Surface{Name: "g2", Boundary: graph.BoundExternal, Points: reversed(quad(0))})

	got := r.Resolve()
	assert.Equal(t, Ground, got["g"].Kind)
	assert.Equal(t, NoSun, got["g"].SunExposure)
	assert.Equal(t, Adiabatic, got["a"].Kind)
	assert.Equal(t, Adiabatic, got["z"].Kind)
	assert.Equal(t, Outdoors, got["g2"].Kind)
	assert.Equal(t, []string{WarnNoPartner}, rec.kinds)
}

func TestResolveAmbiguous(t *testing.T) {
	rec := &recorder{}
	r := NewResolver(0.01, nil, rec)
	r.Add(Surface{Name: "a", Boundary: graph.BoundExternal, Points: quad(4)})
	r.Add(Surface{Name: "b", Boundary: graph.BoundExternal, Points: reversed(quad(4))})
	r.Add(Surface{Name: "c", Boundary: graph.BoundExternal, Points: reversed(quad(4))})

	got := r.Resolve()
	assert.Equal(t, "b", got["a"].Object, "first in stable order wins")
	assert.Equal(t, "a", got["b"].Object)
	assert.Equal(t, Outdoors, got["c"].Kind, "a paired partner is not reused")
	assert.Equal(t, []string{WarnAmbiguous}, rec.kinds)
}

func TestPair(t *testing.T) {
	r := NewResolver(0.01, nil, nil)
	r.Add(Surface{Name: "a", Boundary: graph.BoundZone, Points: quad(0)})
	r.Add(Surface{Name: "b", Boundary: graph.BoundZone, Points: quad(7)})
	r.Add(Surface{Name: "c", Boundary: graph.BoundZone, Points: reversed(quad(0))})

	require.NoError(t, r.Pair("a", "b"))
	require.NoError(t, r.Pair("b", "a"), "repeating a pair is harmless")
	assert.ErrorIs(t, r.Pair("a", "c"), ErrAlreadyPaired)
	assert.ErrorIs(t, r.Pair("a", "nope"), ErrUnknownSurface)

	got := r.Resolve()
	assert.Equal(t, "b", got["a"].Object, "explicit pairs beat geometry")
	assert.Equal(t, "a", got["b"].Object)
	assert.Equal(t, Adiabatic, got["c"].Kind)
}

func TestFenestrationObject(t *testing.T) {
	assert.Equal(t, "", FenestrationObject(graph.ConWindow, ""))
	assert.Equal(t, "win-EN_B_5", FenestrationObject(graph.ConWindow, "EN_B_5"))
	assert.Equal(t, "door-EN_B_5", FenestrationObject(graph.ConDoor, "EN_B_5"))
}

func wallSquare() []v3.Vec {
	return []v3.Vec{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 2}, {X: 0, Y: 0, Z: 2}}
}

func TestSimpleFrame(t *testing.T) {
	got := SimpleFrame(wallSquare(), 10)
	require.Len(t, got, 4)
	assert.InDelta(t, 0.1, got[0].X, 1e-9)
	assert.InDelta(t, 0.1, got[0].Z, 1e-9)
	assert.InDelta(t, 1.9, got[2].X, 1e-9)
	assert.InDelta(t, 0, got[2].Y, 1e-9)
}

func TestDetailedFrame(t *testing.T) {
	got := DetailedFrame(wallSquare(), 0.05)
	want := []v3.Vec{{X: 0.051, Z: 0.051}, {X: 1.949, Z: 0.051}, {X: 1.949, Z: 1.949}, {X: 0.051, Z: 1.949}}
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-9, "vertex %d x", i)
		assert.InDelta(t, 0, got[i].Y, 1e-9, "vertex %d y", i)
		assert.InDelta(t, want[i].Z, got[i].Z, 1e-9, "vertex %d z", i)
	}
}

func TestFrameVertices(t *testing.T) {
	pts := wallSquare()
	assert.Equal(t, SimpleFrame(pts, 20), FrameVertices(pts, nil, 20))
	assert.Equal(t, SimpleFrame(pts, 20), FrameVertices(pts, &graph.FrameData{Class: graph.FrameSimple}, 20))
	assert.Equal(t, DetailedFrame(pts, 0.1), FrameVertices(pts, &graph.FrameData{Class: graph.FrameDetailed, Width: 0.1}, 20))
}
