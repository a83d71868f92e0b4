package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chazu/envi/pkg/boundary"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
	"github.com/chazu/envi/pkg/kernel"
	"github.com/chazu/envi/pkg/kernel/sdfx"
	"github.com/chazu/envi/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

// material builds a single-layer construction of kind, with an optional
// PV attachment.
func material(t *testing.T, name string, kind graph.ConKind, pv *graph.PVData) *scene.Material {
	t.Helper()
	g := graph.New()
	con := graph.NewNode(graph.NodeConstruction, "con", graph.ConstructionData{Kind: kind, Active: true})
	layer := graph.LayerData{Class: graph.LayerOpaque, Material: "Concrete", Thickness: 0.2, Conductivity: 1.4, Density: 2300, SpecificHeat: 880}
	if kind == graph.ConWindow {
		layer = graph.LayerData{Class: graph.LayerGlazing, Material: "Clear", Thickness: 0.006, Conductivity: 0.9}
	}
	l := graph.NewNode(graph.NodeLayer, "layer", layer)
	g.AddNode(con)
	g.AddNode(l)
	require.NoError(t, g.Connect(l, graph.SockLayer, con, graph.SockOuterLayer))
	if pv != nil {
		p := graph.NewNode(graph.NodePV, "pv", *pv)
		g.AddNode(p)
		require.NoError(t, g.Connect(p, graph.SockPV, con, graph.SockPV))
	}
	return &scene.Material{Name: name, Graph: g}
}

// Slots of the box meshes.
const (
	slotWall = iota
	slotFloor
	slotRoof
	slotGlass
)

// boxMesh returns an outward-wound box at x0. The +Y wall carries a
// window over its first 40% when window is set; a non-nil windowTop adds
// a fifth window vertex.
func boxMesh(x0, x, y, z float64, window bool, windowTop *v3.Vec) *kernel.Mesh {
	c := func(a, b, d float64) v3.Vec { return vec(x0+a, b, d) }
	m := &kernel.Mesh{Name: "box"}
	m.AddFace([]v3.Vec{c(0, 0, 0), c(0, y, 0), c(x, y, 0), c(x, 0, 0)}, slotFloor)
	m.AddFace([]v3.Vec{c(0, 0, z), c(x, 0, z), c(x, y, z), c(0, y, z)}, slotRoof)
	m.AddFace([]v3.Vec{c(0, 0, 0), c(x, 0, 0), c(x, 0, z), c(0, 0, z)}, slotWall)
	if window {
		w := x * 0.4
		m.AddFace([]v3.Vec{c(x, y, 0), c(w, y, 0), c(w, y, z), c(x, y, z)}, slotWall)
		glass := []v3.Vec{c(w, y, 0), c(0, y, 0), c(0, y, z)}
		if windowTop != nil {
			glass = append(glass, *windowTop)
		}
		glass = append(glass, c(w, y, z))
		m.AddFace(glass, slotGlass)
	} else {
		m.AddFace([]v3.Vec{c(x, y, 0), c(0, y, 0), c(0, y, z), c(x, y, z)}, slotWall)
	}
	m.AddFace([]v3.Vec{c(0, y, 0), c(0, 0, 0), c(0, 0, z), c(0, y, z)}, slotWall)
	m.AddFace([]v3.Vec{c(x, 0, 0), c(x, y, 0), c(x, y, z), c(x, 0, z)}, slotWall)
	return m
}

type sceneOpts struct {
	pv        bool
	windowTop *v3.Vec
}

// shoeboxScene is one 4 x 3 x 2.5 zone with a window over 40% of its
// north wall, exported for frame 1.
func shoeboxScene(t *testing.T, o sceneOpts) *scene.Scene {
	t.Helper()
	sc := scene.New("shoebox")
	sc.Params.FrameStart, sc.Params.FrameEnd = 1, 1
	var pv *graph.PVData
	if o.pv {
		pv = &graph.PVData{Fraction: 0.8, Efficiency: 0.18}
	}
	sc.AddMaterial(material(t, "wall", graph.ConWall, nil))
	sc.AddMaterial(material(t, "floor", graph.ConFloor, nil))
	sc.AddMaterial(material(t, "roof", graph.ConRoof, pv))
	sc.AddMaterial(material(t, "glass", graph.ConWindow, nil))

	col := sc.Collection("office")
	col.Objects = append(col.Objects, &scene.Object{
		Name:      "office",
		Type:      scene.ObjectZone,
		Mesh:      boxMesh(0, 4, 3, 2.5, true, o.windowTop),
		Slots:     []string{"wall", "floor", "roof", "glass"},
		Transform: kernel.Identity(),
	})
	return sc
}

type countingMetrics struct {
	nopMetrics
	surfaces int
	errors   []string
}

func (m *countingMetrics) SurfaceEmitted(string)   { m.surfaces++ }
func (m *countingMetrics) ExportError(kind string) { m.errors = append(m.errors, kind) }

func newExporter(t *testing.T, m Metrics) *Exporter {
	t.Helper()
	e := New(DefaultOptions(t.TempDir()), sdfx.New(), nil, nil, m)
	e.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func exportFrame(t *testing.T, e *Exporter, sc *scene.Scene) (*Context, string, error) {
	t.Helper()
	ec, err := e.Prepare(sc, 1)
	require.NoError(t, err)
	data, err := e.ExportFrame(context.Background(), ec)
	return ec, string(data), err
}

// recordValue returns the value written for field in the first record of
// kind in doc.
func recordValue(doc, kind, field string) string {
	i := strings.Index(doc, "\n"+kind+",\n")
	if i < 0 {
		return ""
	}
	for _, line := range strings.Split(doc[i+1:], "\n")[1:] {
		if line == "" {
			return ""
		}
		if strings.HasSuffix(line, "!- "+field) {
			v := strings.TrimSpace(strings.SplitN(line, "!-", 2)[0])
			return strings.TrimRight(v, ",;")
		}
	}
	return ""
}

func TestExportShoebox(t *testing.T) {
	m := &countingMetrics{}
	e := newExporter(t, m)
	ec, doc, err := exportFrame(t, e, shoeboxScene(t, sceneOpts{}))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(doc, "\nBuilding,\n"))
	assert.Equal(t, 1, strings.Count(doc, "\nZone,\n"))
	assert.Equal(t, 1, strings.Count(doc, "\nFenestrationSurface:Detailed,\n"))
	assert.GreaterOrEqual(t, strings.Count(doc, "\nBuildingSurface:Detailed,\n"), 4)
	assert.NotContains(t, doc, "ElectricLoadCenter")
	assert.NotContains(t, doc, "AirflowNetwork")
	assert.NotContains(t, doc, "ZoneInfiltration:DesignFlowRate", "no infiltration node linked")

	host := recordValue(doc, "FenestrationSurface:Detailed", "Building Surface Name")
	require.NotEmpty(t, host)
	assert.Contains(t, doc, "BuildingSurface:Detailed,\n    "+host+",")
	assert.Equal(t, "win-"+host, recordValue(doc, "FenestrationSurface:Detailed", "Name"))
	assert.True(t, strings.HasPrefix(host, "EN_OFFICE_"))
	assert.Contains(t, doc, "glass-frame")

	assert.InDelta(t, 12.0, ec.TotalFloorArea, 1e-9)
	assert.Equal(t, "30.0", recordValue(doc, "Zone", "Volume (m3)"))
	assert.Equal(t, "Outdoors", recordValue(doc, "BuildingSurface:Detailed", "Outside Boundary Condition"))
	assert.Equal(t, 7, m.surfaces)
}

func TestExportSectionOrder(t *testing.T) {
	_, doc, err := exportFrame(t, newExporter(t, nil), shoeboxScene(t, sceneOpts{}))
	require.NoError(t, err)

	order := []string{
		"VERSION,9.4.0;",
		"\nBuilding,",
		"Timestep, 6;",
		"HeatBalanceAlgorithm, ConductionTransferFunction;",
		"\nRunPeriod,",
		"\nMaterial,",
		"\nConstruction,",
		"\nZone,",
		"\nGlobalGeometryRules,",
		"\nBuildingSurface:Detailed,",
		"\nFenestrationSurface:Detailed,",
		"\nScheduleTypeLimits,",
		"Output:Variable,*,Site Outdoor Air Drybulb Temperature,hourly;",
		"Output:Variable,*,Zone Air Temperature,hourly;",
		"\nOutput:Table:SummaryReports,",
	}
	last := -1
	for _, s := range order {
		i := strings.Index(doc, s)
		require.GreaterOrEqual(t, i, 0, "missing %q", s)
		assert.Greater(t, i, last, "%q out of order", s)
		last = i
	}
}

func TestExportFenestrationVertices(t *testing.T) {
	m := &countingMetrics{}
	e := newExporter(t, m)
	top := vec(0.8, 3, 2.9)
	sc := shoeboxScene(t, sceneOpts{windowTop: &top})

	_, doc, err := exportFrame(t, e, sc)
	require.Error(t, err)
	assert.Empty(t, doc)
	assert.True(t, errors.Is(err, ErrFenestrationVertices))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, verr.Frame)
	assert.Equal(t, []string{"fenestration-vertices"}, m.errors)

	_, err = e.Run(context.Background(), sc)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(e.opts.Workdir, "in1.idf"))
	assert.True(t, os.IsNotExist(statErr), "no file written for an aborted frame")
}

func TestExportGenerators(t *testing.T) {
	tests := []struct {
		name       string
		pv         bool
		records    int
		generators int
	}{
		{"no pv", false, 0, 0},
		{"pv roof", true, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec, doc, err := exportFrame(t, newExporter(t, nil), shoeboxScene(t, sceneOpts{pv: tt.pv}))
			require.NoError(t, err)
			assert.Equal(t, tt.records, strings.Count(doc, "\nElectricLoadCenter:Distribution,\n"))
			assert.Equal(t, tt.records, strings.Count(doc, "\nElectricLoadCenter:Inverter:Simple,\n"))
			assert.Equal(t, tt.records, strings.Count(doc, "\nElectricLoadCenter:Generators,\n"))
			assert.Equal(t, tt.generators, strings.Count(doc, "Generator:Photovoltaic,\n"))
			assert.Len(t, ec.Generators, tt.generators)
			assert.NotContains(t, doc, "Generator 1 Name")
			if tt.pv {
				assert.Equal(t, ec.Generators[0], recordValue(doc, "ElectricLoadCenter:Generators", "Generator 0 Name"))
				assert.Contains(t, doc, idf.SectionGenerators.Banner())
			} else {
				assert.NotContains(t, doc, idf.SectionGenerators.Banner())
			}
		})
	}
}

func TestExportScheduleDefaults(t *testing.T) {
	sc := shoeboxScene(t, sceneOpts{})
	inf := graph.NewNode(graph.NodeInfiltration, "inf", graph.InfiltrationData{Method: "AirChanges/Hour", Value: 0.5})
	occ := graph.NewNode(graph.NodeOccupancy, "occ", graph.OccupancyData{Method: "People", Count: 2, Watts: 90, WorkEff: 0, AirVelocity: 0.1, Clothing: 0.5})
	hvac := graph.NewNode(graph.NodeHVAC, "hvac", graph.HVACData{HeatingSetpoint: 20, CoolingSetpoint: 26})
	sched := graph.NewNode(graph.NodeSchedule, "office hours", graph.ScheduleData{Rules: []graph.ScheduleRule{{
		Through: "12/31",
		Days: []graph.DayRule{{For: "Alldays", Untils: []graph.Until{
			{Time: "08:00", Value: 0}, {Time: "18:00", Value: 1}, {Time: "24:00", Value: 0},
		}}},
	}}})
	for _, n := range []*graph.Node{inf, occ, hvac, sched} {
		sc.Network.AddNode(n)
	}
	sc.Links = []scene.Link{
		{From: "inf", FromSocket: graph.SockInfiltration, To: "EN_OFFICE", ToSocket: graph.SockInfiltration},
		{From: "occ", FromSocket: graph.SockOccupancy, To: "EN_OFFICE", ToSocket: graph.SockOccupancy},
		{From: "hvac", FromSocket: graph.SockHVAC, To: "EN_OFFICE", ToSocket: graph.SockHVAC},
		{From: "office hours", FromSocket: graph.SockSchedule, To: "occ", ToSocket: graph.SockOccSchedule},
	}

	ec, doc, err := exportFrame(t, newExporter(t, nil), sc)
	require.NoError(t, err)
	assert.Zero(t, ec.Rebuild.Dropped)
	assert.False(t, ec.HVACTemplate)

	assert.Contains(t, doc, idf.ConstantSchedule("EN_OFFICE_infsched", "Fraction", "1"))
	assert.Contains(t, doc, idf.ConstantSchedule("EN_OFFICE_hvacsched", "Fraction", "1"))
	assert.Contains(t, doc, idf.ConstantSchedule("EN_OFFICE_htspsched", "Temperature", "20"))
	assert.Contains(t, doc, idf.ConstantSchedule("EN_OFFICE_ctspsched", "Temperature", "26"))
	assert.Contains(t, doc, idf.ConstantSchedule("EN_OFFICE_actsched", "Any Number", "90.000"))
	assert.Contains(t, doc, idf.ConstantSchedule("EN_OFFICE_closched", "Any Number", "0.500"))
	assert.Contains(t, doc, idf.Compact("EN_OFFICE_occsched", "Fraction", sched.Data.(graph.ScheduleData).Rules))
	assert.NotContains(t, doc, idf.ConstantSchedule("EN_OFFICE_occsched", "Fraction", "1.000"))

	assert.Equal(t, "AirChanges/Hour", recordValue(doc, "ZoneInfiltration:DesignFlowRate", "Design Flow Rate Calculation Method"))
	assert.Equal(t, "0.5", recordValue(doc, "ZoneInfiltration:DesignFlowRate", "Air Changes per Hour (1/hr)"))
	assert.Equal(t, "EN_OFFICE_dsp", recordValue(doc, "ZoneControl:Thermostat", "Control 1 Name"))
	assert.Equal(t, "EN_OFFICE_Air", recordValue(doc, "ZoneHVAC:EquipmentList", "Zone Equipment 1 Name"))
}

func TestOutputVariablesAFN(t *testing.T) {
	o := scene.OutputSet{InfiltrationVolume: true, InfiltrationACH: true, CO2: true}
	plain := OutputVariables(o, false)
	afn := OutputVariables(o, true)

	assert.Equal(t, []string{"Zone Infiltration Current Density Volume", "Zone Infiltration Air Change Rate", "Zone Air CO2 Concentration"}, plain)
	assert.Equal(t, []string{"AFN Zone Infiltration Volume", "AFN Zone Infiltration Air Change Rate", "AFN Node CO2 Concentration"}, afn)
	assert.Empty(t, OutputVariables(scene.OutputSet{}, true))
}

func TestExportAirflowOutputs(t *testing.T) {
	sc := shoeboxScene(t, sceneOpts{})
	sc.Params.Outputs.CO2 = true
	sc.Network.AddNode(graph.NewNode(graph.NodeSimpleFlow, "crack", graph.SimpleFlowData{Link: graph.FlowCrack, Coefficient: 0.001, Exponent: 0.65}))

	ec, doc, err := exportFrame(t, newExporter(t, nil), sc)
	require.NoError(t, err)
	assert.True(t, ec.AFN)
	assert.Contains(t, doc, "\nAirflowNetwork:SimulationControl,\n")
	assert.Contains(t, doc, "\nAirflowNetwork:MultiZone:Zone,\n")
	assert.Contains(t, doc, "\nAirflowNetwork:MultiZone:Surface:Crack,\n")
	assert.Contains(t, doc, "AFN Node CO2 Concentration")
	assert.NotContains(t, doc, "Zone Air CO2 Concentration")
}

func TestExportAdjacentZones(t *testing.T) {
	sc := scene.New("pair")
	sc.Params.FrameStart, sc.Params.FrameEnd = 1, 1
	sc.AddMaterial(material(t, "wall", graph.ConWall, nil))
	sc.AddMaterial(material(t, "floor", graph.ConFloor, nil))
	sc.AddMaterial(material(t, "roof", graph.ConRoof, nil))
	for i, name := range []string{"west", "east"} {
		col := sc.Collection(name)
		col.Objects = append(col.Objects, &scene.Object{
			Name:      name,
			Type:      scene.ObjectZone,
			Mesh:      boxMesh(float64(i)*4, 4, 3, 2.5, false, nil),
			Slots:     []string{"wall", "floor", "roof"},
			Transform: kernel.Identity(),
		})
	}

	ec, doc, err := exportFrame(t, newExporter(t, nil), sc)
	require.NoError(t, err)

	var paired []string
	for name, c := range ec.Conditions {
		if c.Kind != boundary.OtherSurface {
			continue
		}
		paired = append(paired, name)
		assert.Equal(t, name, ec.Conditions[c.Object].Object, "pairing is symmetric")
		assert.Equal(t, boundary.NoSun, c.SunExposure)
	}
	require.Len(t, paired, 2)
	assert.True(t, strings.HasPrefix(paired[0], "EN_WEST_") != strings.HasPrefix(paired[1], "EN_WEST_"))
	assert.Equal(t, 2, strings.Count(doc, "\nZone,\n"))
}

func TestPrepareBadNetworkNode(t *testing.T) {
	sc := shoeboxScene(t, sceneOpts{})
	bad := graph.NewNode(graph.NodeSchedule, "empty", graph.ScheduleData{})
	sc.Network.AddNode(bad)

	_, err := newExporter(t, nil).Prepare(sc, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadNode))
	assert.True(t, bad.Bad)
}

func TestRunWritesFramesAndExpandsTemplates(t *testing.T) {
	sc := shoeboxScene(t, sceneOpts{})
	sc.Params.FrameEnd = 2
	sc.Network.AddNode(graph.NewNode(graph.NodeHVAC, "ideal", graph.HVACData{Template: true, HeatingSetpoint: 19, CoolingSetpoint: 25}))
	sc.Links = []scene.Link{{From: "ideal", FromSocket: graph.SockHVAC, To: "EN_OFFICE", ToSocket: graph.SockHVAC}}

	e := newExporter(t, nil)
	var calls int
	e.Expand = func(_ context.Context, dir string) error {
		calls++
		in, err := os.ReadFile(filepath.Join(dir, "in.idf"))
		if err != nil {
			return err
		}
		if !strings.Contains(string(in), "HVACTemplate:Zone:IdealLoadsAirSystem") {
			return errors.New("template missing")
		}
		return os.WriteFile(filepath.Join(dir, "expanded.idf"), []byte("expanded\n"), 0o644)
	}

	results, err := e.Run(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, calls)
	for i, r := range results {
		assert.Equal(t, i+1, r.Frame)
		assert.True(t, r.Expanded)
		data, err := os.ReadFile(r.Path)
		require.NoError(t, err)
		assert.Equal(t, "expanded\n", string(data))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newExporter(t, nil).Run(ctx, shoeboxScene(t, sceneOpts{}))
	assert.ErrorIs(t, err, context.Canceled)
}
