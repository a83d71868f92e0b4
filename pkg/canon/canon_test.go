package canon_test

import (
	"testing"

	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/identity"
	"github.com/chazu/envi/pkg/kernel"
	"github.com/chazu/envi/pkg/kernel/sdfx"
	"github.com/chazu/envi/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kinds is a canned material classifier.
type kinds map[string]graph.ConKind

func (k kinds) Kind(name string) (graph.ConKind, bool) {
	c, ok := k[name]
	return c, ok
}

type recorder struct {
	kinds []string
}

func (r *recorder) Warn(kind, subject, message string) {
	r.kinds = append(r.kinds, kind)
}

// boxMesh returns an outward-wound box. The floor uses slot 1, every
// other face slot 0. With split set, the +Y wall is made of two quads.
func boxMesh(x, y, z float64, split bool) *kernel.Mesh {
	c := vec
	m := &kernel.Mesh{Name: "box"}
	m.AddFace([]v3.Vec{c(0, 0, 0), c(0, y, 0), c(x, y, 0), c(x, 0, 0)}, 1)
	m.AddFace([]v3.Vec{c(0, 0, z), c(x, 0, z), c(x, y, z), c(0, y, z)}, 0)
	m.AddFace([]v3.Vec{c(0, 0, 0), c(x, 0, 0), c(x, 0, z), c(0, 0, z)}, 0)
	if split {
		h := x / 2
		m.AddFace([]v3.Vec{c(x, y, 0), c(h, y, 0), c(h, y, z), c(x, y, z)}, 0)
		m.AddFace([]v3.Vec{c(h, y, 0), c(0, y, 0), c(0, y, z), c(h, y, z)}, 0)
	} else {
		m.AddFace([]v3.Vec{c(x, y, 0), c(0, y, 0), c(0, y, z), c(x, y, z)}, 0)
	}
	m.AddFace([]v3.Vec{c(0, y, 0), c(0, 0, 0), c(0, 0, z), c(0, y, z)}, 0)
	m.AddFace([]v3.Vec{c(x, 0, 0), c(x, y, 0), c(x, y, z), c(x, 0, z)}, 0)
	return m
}

func newCanon(reg *identity.Registry, rep canon.Reporter) *canon.Canonicalizer {
	return canon.New(sdfx.New(), reg, canon.DefaultOptions(), nil, rep)
}

func shoebox(split bool) *scene.Collection {
	return &scene.Collection{
		Name: "office",
		Objects: []*scene.Object{{
			Name:      "office",
			Type:      scene.ObjectZone,
			Mesh:      boxMesh(4, 3, 2.5, split),
			Slots:     []string{"wall", "floor"},
			Transform: kernel.Transform{Translation: vec(10, 0, 0)},
		}},
	}
}

var shoeboxKinds = kinds{"wall": graph.ConWall, "floor": graph.ConFloor}

func TestCollectionShoebox(t *testing.T) {
	c := newCanon(nil, nil)
	z, err := c.Collection(shoebox(false), 1, scene.DefaultParams(), shoeboxKinds)
	require.NoError(t, err)
	require.NotNil(t, z)

	assert.Equal(t, "EN_OFFICE", z.Name)
	assert.Equal(t, scene.ObjectZone, z.Kind)
	assert.Equal(t, 6, z.Mesh.FaceCount())
	assert.Equal(t, 12, z.Mesh.VertexCount(), "floor corners split from the walls")
	assert.InDelta(t, 30.0, z.Volume, 1e-9)
	assert.InDelta(t, 12.0, z.FloorArea, 1e-9)

	for i := range z.Faces {
		assert.Equal(t, i+1, z.Faces[i].ID, "IDs are allocated in face order")
	}
	assert.Equal(t, "EN_OFFICE_1", z.SurfaceName(0))
	assert.Equal(t, graph.ConFloor, z.Faces[0].Kind)
	assert.Equal(t, 10.0, z.Mesh.Verts[z.Mesh.Faces[2].Loop[0]].X, "world transform applied")
}

func TestCollectionMergesCoplanarFaces(t *testing.T) {
	c := newCanon(nil, nil)
	z, err := c.Collection(shoebox(true), 1, scene.DefaultParams(), shoeboxKinds)
	require.NoError(t, err)
	assert.Equal(t, 6, z.Mesh.FaceCount())
	assert.InDelta(t, 30.0, z.Volume, 1e-9)
}

func TestFaceIDsAreStable(t *testing.T) {
	reg := identity.New()
	col := shoebox(false)

	first, err := newCanon(reg, nil).Collection(col, 1, scene.DefaultParams(), shoeboxKinds)
	require.NoError(t, err)
	second, err := newCanon(reg, nil).Collection(col, 2, scene.DefaultParams(), shoeboxKinds)
	require.NoError(t, err)

	require.Equal(t, len(first.Faces), len(second.Faces))
	for i := range first.Faces {
		assert.Equal(t, first.Faces[i].ID, second.Faces[i].ID)
	}

	// Dropping the floor keeps the other IDs; re-adding it restores its ID.
	col.Objects[0].Slots = []string{"wall", ""}
	rep := &recorder{}
	noFloor, err := newCanon(reg, rep).Collection(col, 3, scene.DefaultParams(), shoeboxKinds)
	require.NoError(t, err)
	assert.Equal(t, 5, noFloor.Mesh.FaceCount())
	assert.Equal(t, first.Faces[1].ID, noFloor.Faces[0].ID)
	assert.Contains(t, rep.kinds, canon.WarnEmptySlot)
}

func TestCollectionWithoutExportableMaterial(t *testing.T) {
	rep := &recorder{}
	c := newCanon(nil, rep)
	col := shoebox(false)
	col.Objects[0].Slots = []string{"plain", "plain"}

	z, err := c.Collection(col, 1, scene.DefaultParams(), shoeboxKinds)
	require.NoError(t, err)
	assert.Nil(t, z)
	assert.Equal(t, []string{canon.WarnNoMaterial}, rep.kinds)
}

func TestNoneConstructionFacesDeleted(t *testing.T) {
	c := newCanon(nil, nil)
	z, err := c.Collection(shoebox(false), 1, scene.DefaultParams(),
		kinds{"wall": graph.ConWall, "floor": graph.ConNone})
	require.NoError(t, err)
	assert.Equal(t, 5, z.Mesh.FaceCount())
	assert.Zero(t, z.FloorArea)
}

func TestShadingCollectionHasNoVolume(t *testing.T) {
	col := shoebox(false)
	col.Name = "canopy"
	col.Objects[0].Type = scene.ObjectShading

	z, err := newCanon(nil, nil).Collection(col, 1, scene.DefaultParams(), shoeboxKinds)
	require.NoError(t, err)
	assert.Equal(t, scene.ObjectShading, z.Kind)
	assert.Zero(t, z.Volume)
}

func TestSceneDropsEmptyCollections(t *testing.T) {
	s := scene.New("test")
	s.Collections = append(s.Collections, shoebox(false), &scene.Collection{Name: "empty"})

	zones, err := newCanon(nil, nil).Scene(s, 0, shoeboxKinds)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "EN_OFFICE", zones[0].Name)
	assert.Equal(t, 0, zones[0].FaceIndex(1))
	assert.Equal(t, -1, zones[0].FaceIndex(99))
}
