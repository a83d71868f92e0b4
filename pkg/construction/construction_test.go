package construction

import (
	"testing"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, g *graph.Graph, from *graph.Node, out string, to *graph.Node, in string) {
	t.Helper()
	require.NoError(t, g.Connect(from, out, to, in))
}

// wallMaterial builds brick (outer) over insulation.
func wallMaterial(t *testing.T, name string) *scene.Material {
	t.Helper()
	g := graph.New()
	con := graph.NewNode(graph.NodeConstruction, "con", graph.ConstructionData{Kind: graph.ConWall, Active: true})
	brick := graph.NewNode(graph.NodeLayer, "brick", graph.LayerData{Class: graph.LayerOpaque, Material: "Brick", Thickness: 0.1, Conductivity: 0.72})
	ins := graph.NewNode(graph.NodeLayer, "ins", graph.LayerData{Class: graph.LayerNoMass, Material: "Insulation", Resistance: 2.5})
	g.AddNode(con)
	g.AddNode(brick)
	g.AddNode(ins)
	connect(t, g, brick, graph.SockLayer, con, graph.SockOuterLayer)
	connect(t, g, ins, graph.SockLayer, brick, graph.SockLayer)
	return &scene.Material{Name: name, Graph: g}
}

func windowMaterial(t *testing.T, frame *graph.FrameData) *scene.Material {
	t.Helper()
	g := graph.New()
	con := graph.NewNode(graph.NodeConstruction, "con", graph.ConstructionData{Kind: graph.ConWindow, Active: true, FrameArea: 10})
	glass := graph.NewNode(graph.NodeLayer, "glass", graph.LayerData{Class: graph.LayerGlazing, Material: "Clear", Thickness: 0.006, Conductivity: 0.9})
	g.AddNode(con)
	g.AddNode(glass)
	connect(t, g, glass, graph.SockLayer, con, graph.SockOuterLayer)
	if frame != nil {
		f := graph.NewNode(graph.NodeFrame, "frame", *frame)
		g.AddNode(f)
		connect(t, g, f, graph.SockFrame, con, graph.SockFrame)
	}
	return &scene.Material{Name: "glass", Graph: g}
}

type recorder struct {
	subjects []string
}

func (r *recorder) Warn(kind, subject, message string) {
	r.subjects = append(r.subjects, kind+":"+subject)
}

func TestResolveWall(t *testing.T) {
	c, err := Resolve(wallMaterial(t, "wall"))
	require.NoError(t, err)
	assert.Equal(t, "wall", c.Name)
	assert.Equal(t, graph.ConWall, c.Kind)
	assert.Equal(t, graph.BoundExternal, c.Boundary)
	require.Len(t, c.Layers, 2)
	assert.Equal(t, "Brick", c.Layers[0].Material, "outermost first")
	assert.Equal(t, "Insulation", c.Layers[1].Material)
	assert.Nil(t, c.PV)
	assert.False(t, c.Detailed())
	assert.True(t, c.Written())
}

func TestResolveNoConstruction(t *testing.T) {
	_, err := Resolve(&scene.Material{Name: "bare"})
	assert.ErrorIs(t, err, ErrNoConstruction)

	g := graph.New()
	g.AddNode(graph.NewNode(graph.NodeConstruction, "off", graph.ConstructionData{Kind: graph.ConWall}))
	_, err = Resolve(&scene.Material{Name: "inactive", Graph: g})
	assert.ErrorIs(t, err, ErrNoConstruction)
}

func TestResolveBadNode(t *testing.T) {
	m := wallMaterial(t, "wall")
	brick := m.Graph.MustLookup("brick")
	ld := brick.Data.(graph.LayerData)
	ld.Thickness = 0
	brick.Data = ld

	_, err := Resolve(m)
	require.ErrorIs(t, err, ErrBadNode)
	assert.Contains(t, err.Error(), "brick")
	assert.True(t, brick.Bad)
}

func TestResolveFrames(t *testing.T) {
	c, err := Resolve(windowMaterial(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.FrameArea)
	assert.False(t, c.Detailed())

	c, err = Resolve(windowMaterial(t, &graph.FrameData{Class: graph.FrameSimple, AreaPercent: 25}))
	require.NoError(t, err)
	assert.Equal(t, 25.0, c.FrameArea)
	assert.Nil(t, c.Frame)

	c, err = Resolve(windowMaterial(t, &graph.FrameData{Class: graph.FrameDetailed, Width: 0.05, Conductance: 5}))
	require.NoError(t, err)
	require.True(t, c.Detailed())
	assert.Equal(t, 0.05, c.Frame.Width)
}

func TestResolvePV(t *testing.T) {
	m := wallMaterial(t, "pvwall")
	pv := graph.NewNode(graph.NodePV, "pv", graph.PVData{Fraction: 0.8, Efficiency: 0.18, HeatTransfer: "Decoupled"})
	m.Graph.AddNode(pv)
	connect(t, m.Graph, pv, graph.SockPV, m.Graph.MustLookup("con"), graph.SockPV)

	c, err := Resolve(m)
	require.NoError(t, err)
	require.NotNil(t, c.PV)
	assert.Equal(t, 0.18, c.PV.Efficiency)
}

func TestSetLoad(t *testing.T) {
	sc := scene.New("test")
	sc.AddMaterial(wallMaterial(t, "wall"))
	sc.AddMaterial(&scene.Material{Name: "nograph"})
	broken := wallMaterial(t, "unused")
	broken.Graph.MustLookup("brick").Bad = true
	sc.AddMaterial(broken)
	col := sc.Collection("office")
	col.Objects = append(col.Objects, &scene.Object{Name: "box", Slots: []string{"wall", "nograph"}})

	rep := &recorder{}
	set := NewSet(nil, rep)
	require.NoError(t, set.Load(sc), "unused materials are not resolved")

	assert.Equal(t, []string{WarnNoConstruction + ":nograph"}, rep.subjects)
	require.Len(t, set.Ordered(), 1)
	kind, ok := set.Kind("wall")
	assert.True(t, ok)
	assert.Equal(t, graph.ConWall, kind)
	_, ok = set.Kind("nograph")
	assert.False(t, ok)
	assert.Nil(t, set.Get("unused"))
	assert.False(t, set.HasPV())
}

func TestSetLoadAbortsOnBadNode(t *testing.T) {
	sc := scene.New("test")
	m := wallMaterial(t, "wall")
	m.Graph.MustLookup("ins").Bad = true
	sc.AddMaterial(m)
	sc.Collection("office").Objects = []*scene.Object{{Name: "box", Slots: []string{"wall"}}}

	err := NewSet(nil, nil).Load(sc)
	assert.ErrorIs(t, err, ErrBadNode)
}

func TestDisplayColor(t *testing.T) {
	tests := []struct {
		name string
		c    Construction
		want Color
		ok   bool
	}{
		{"wall", Construction{Kind: graph.ConWall}, Color{1, 1, 1}, true},
		{"zone wall", Construction{Kind: graph.ConWall, Boundary: graph.BoundZone}, Color{1, 1, 0}, true},
		{"window", Construction{Kind: graph.ConWindow}, Color{0, 1, 1}, true},
		{"floor", Construction{Kind: graph.ConFloor}, Color{0.44, 0.185, 0.07}, true},
		{"pv roof", Construction{Kind: graph.ConRoof, PV: &graph.PVData{}}, Color{1, 1, 0}, true},
		{"door", Construction{Kind: graph.ConDoor}, Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DisplayColor(&tt.c)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ffffff", Color{1, 1, 1}.Hex())
	assert.Equal(t, "#00ff00", Color{0, 1, 0}.Hex())
	assert.Equal(t, "#702f12", Color{0.44, 0.185, 0.07}.Hex())
}
