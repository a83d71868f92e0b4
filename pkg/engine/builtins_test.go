package engine

import (
	"testing"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Preprocessing
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"simple keyword", `(building :location "London")`, `(building "__kw_location" "London")`},
		{"multiple keywords", `(shoebox :width 4 :depth 3)`, `(shoebox "__kw_width" 4 "__kw_depth" 3)`},
		{"keyword in string preserved", `"thing with :keyword inside"`, `"thing with :keyword inside"`},
		{"assignment operator preserved", `(def x := 10)`, `(def x := 10)`},
		{"kebab-case identifier", `(run-period :start-month 1)`, `(run_period "__kw_start-month" 1)`},
		{"minus operator preserved", `(- 10 5)`, `(- 10 5)`},
		{"negative number preserved", `(vec3 0 -1 0)`, `(vec3 0 -1 0)`},
		{"comment converted", `;; comment with :keyword`, `// comment with :keyword`},
		{"keyword with digits", `:doe-2`, `"__kw_doe-2"`},
		{"socket name in string", `(connect a "Node 2" b "wall_3_s")`, `(connect a "Node 2" b "wall_3_s")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, preprocessSource(tt.input))
		})
	}
}

// ---------------------------------------------------------------------------
// A complete single zone scene
// ---------------------------------------------------------------------------

const shoeboxSource = `
(building :name "office" :location "London" :terrain :city :timesteps 4)
(run-period :start-month 6 :start-day 1 :end-month 6 :end-day 30)
(frames 0 1)
(outputs :co2 true :pmv true)

(material "brick"
  (construction :kind :wall :boundary :external :airflow true
    (layer "Brick" :thickness 0.1 :conductivity 0.72 :density 1920 :specific-heat 840)
    (nomass "Insulation" :resistance 2.5)))
(material "slab"
  (construction :kind :floor :boundary :ground
    (layer "Concrete" :thickness 0.2 :conductivity 1.4 :density 2100 :specific-heat 840)))
(material "deck"
  (construction :kind :roof
    (layer "Timber" :thickness 0.05 :conductivity 0.14 :density 650 :specific-heat 1200)
    (pv :fraction 0.8 :efficiency 0.18 :heat-transfer "Decoupled")))
(material "glass"
  (construction :kind :window :airflow true
    (glazing "Clear 6mm" :thickness 0.006 :conductivity 0.9 :solar-trans 0.77 :vis-trans 0.88 :emissivity 0.84)
    (frame :class :detailed :width 0.05 :conductance 5.7)))

(zone "office"
  (object "office"
    (shoebox :width 4 :depth 3 :height 2.5 :wall "brick" :floor "slab" :roof "deck"
             :window "glass" :wwr 0.4)
    (key 1 :at (vec3 0 0 1))))

(schedule "office-hours"
  (through "12/31"
    (on "Weekdays" "08:00" 0 "18:00" 1 "24:00" 0)
    (on "AllOtherDays" "24:00" 0)))

(hvac "ideal" :zone "office" :heating 20 :cooling 26 :schedule "office-hours")
(occupancy "people" :zone "office" :count 2 :watts 90 :co2 true :schedule "office-hours")
(def crack (simple-flow "crack" :coefficient 0.001))
(connect crack "Node 2" "EN_OFFICE" "brick_2_s")
`

func evalScene(t *testing.T, src string) *scene.Scene {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(src)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, sc)
	return sc
}

func evalFails(t *testing.T, src, want string) {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(src)
	require.NoError(t, err)
	assert.Nil(t, sc)
	require.NotEmpty(t, evalErrs)
	assert.Contains(t, evalErrs[0].Message, want)
}

func TestShoeboxParams(t *testing.T) {
	sc := evalScene(t, shoeboxSource)

	assert.Equal(t, "office", sc.Name)
	p := sc.Params
	assert.Equal(t, "London", p.Location)
	assert.Equal(t, scene.TerrainCity, p.Terrain)
	assert.Equal(t, 4, p.Timesteps)
	assert.Equal(t, scene.Date{Month: 6, Day: 1}, p.Start)
	assert.Equal(t, scene.Date{Month: 6, Day: 30}, p.End)
	assert.Equal(t, []int{0, 1}, sc.Frames())
	assert.True(t, p.Outputs.ZoneTemp, "default output kept")
	assert.True(t, p.Outputs.CO2)
	assert.True(t, p.Outputs.PMV)
	assert.False(t, p.Outputs.PPD)
}

func TestShoeboxMaterials(t *testing.T) {
	sc := evalScene(t, shoeboxSource)
	require.Equal(t, []string{"brick", "slab", "deck", "glass"}, sc.MaterialOrder)

	brick := sc.Material("brick").Graph
	root := brick.MustLookup("brick")
	assert.Equal(t, graph.NodeConstruction, root.Kind)
	data := root.Data.(graph.ConstructionData)
	assert.Equal(t, graph.ConWall, data.Kind)
	assert.True(t, data.Active)
	assert.True(t, data.Airflow)

	outer := brick.Upstream(root, graph.SockOuterLayer)
	require.NotNil(t, outer)
	assert.Equal(t, "Brick", outer.Data.(graph.LayerData).Material)
	inner := brick.Upstream(outer, graph.SockLayer)
	require.NotNil(t, inner)
	assert.Equal(t, graph.LayerNoMass, inner.Data.(graph.LayerData).Class)
	assert.Nil(t, brick.Upstream(inner, graph.SockLayer))

	slab := sc.Material("slab").Graph.MustLookup("slab").Data.(graph.ConstructionData)
	assert.Equal(t, graph.BoundGround, slab.Boundary)

	deck := sc.Material("deck").Graph
	pv := deck.Upstream(deck.MustLookup("deck"), graph.SockPV)
	require.NotNil(t, pv)
	assert.Equal(t, "Decoupled", pv.Data.(graph.PVData).HeatTransfer)

	glass := sc.Material("glass").Graph
	frame := glass.Upstream(glass.MustLookup("glass"), graph.SockFrame)
	require.NotNil(t, frame)
	assert.Equal(t, graph.FrameDetailed, frame.Data.(graph.FrameData).Class)
	assert.Equal(t, graph.LayerGlazing, glass.Upstream(glass.MustLookup("glass"), graph.SockOuterLayer).Data.(graph.LayerData).Class)
}

func TestShoeboxGeometry(t *testing.T) {
	sc := evalScene(t, shoeboxSource)
	require.Len(t, sc.Collections, 1)
	col := sc.Collections[0]
	assert.Equal(t, "EN_OFFICE", col.ZoneName())
	require.Len(t, col.Objects, 1)

	obj := col.Objects[0]
	assert.Equal(t, scene.ObjectZone, obj.Type)
	assert.Equal(t, []string{"slab", "deck", "brick", "glass"}, obj.Slots)
	// floor, roof, three plain walls, split north wall
	assert.Equal(t, 7, obj.Mesh.FaceCount())
	assert.Equal(t, v3.Vec{Z: 1}, obj.WorldTransform(1).Translation)
	assert.Equal(t, v3.Vec{}, obj.WorldTransform(0).Translation)

	var glassArea float64
	for i, f := range obj.Mesh.Faces {
		if obj.Slots[f.Slot] == "glass" {
			pts := obj.Mesh.FaceVerts(i)
			glassArea += pts[0].Sub(pts[1]).Length() * pts[1].Sub(pts[2]).Length()
		}
	}
	assert.InDelta(t, 0.4*4*2.5, glassArea, 1e-9)
}

func TestShoeboxNetwork(t *testing.T) {
	sc := evalScene(t, shoeboxSource)
	net := sc.Network

	sched := net.MustLookup("office-hours").Data.(graph.ScheduleData)
	require.Len(t, sched.Rules, 1)
	assert.Equal(t, "12/31", sched.Rules[0].Through)
	require.Len(t, sched.Rules[0].Days, 2)
	assert.Equal(t, []graph.Until{{Time: "08:00", Value: 0}, {Time: "18:00", Value: 1}, {Time: "24:00", Value: 0}}, sched.Rules[0].Days[0].Untils)

	hvac := net.MustLookup("ideal").Data.(graph.HVACData)
	assert.Equal(t, 20.0, hvac.HeatingSetpoint)
	assert.Equal(t, 26.0, hvac.CoolingSetpoint)
	assert.True(t, net.MustLookup("people").Data.(graph.OccupancyData).CO2)
	assert.Equal(t, graph.NodeSimpleFlow, net.MustLookup("crack").Kind)

	assert.Equal(t, []scene.Link{
		{From: "ideal", FromSocket: graph.SockHVAC, To: "EN_OFFICE", ToSocket: graph.SockHVAC},
		{From: "office-hours", FromSocket: graph.SockSchedule, To: "ideal", ToSocket: graph.SockSchedule},
		{From: "people", FromSocket: graph.SockOccupancy, To: "EN_OFFICE", ToSocket: graph.SockOccupancy},
		{From: "office-hours", FromSocket: graph.SockSchedule, To: "people", ToSocket: graph.SockOccSchedule},
		{From: "crack", FromSocket: graph.SockNode2, To: "EN_OFFICE", ToSocket: "brick_2_s"},
	}, sc.Links)
}

// ---------------------------------------------------------------------------
// Individual forms
// ---------------------------------------------------------------------------

func TestShoeboxWindowSides(t *testing.T) {
	tests := []struct {
		side  int
		wwr   float64
		faces int
	}{
		{sides["south"], 0.5, 7},
		{sides["west"], 1, 6},
		{sides["north"], 0, 6},
	}
	for _, tt := range tests {
		faces := shoeboxFaces(v3.Vec{}, 4, 3, 2.5, "w", "f", "r", "g", tt.wwr, tt.side)
		assert.Len(t, faces, tt.faces)
		var glass int
		for _, f := range faces {
			if f.material == "g" {
				glass++
			}
		}
		if tt.wwr > 0 {
			assert.Equal(t, 1, glass)
		} else {
			assert.Zero(t, glass)
		}
	}
}

func TestSplitWall(t *testing.T) {
	q := [4]v3.Vec{{X: 0}, {X: 4}, {X: 4, Z: 2}, {Z: 2}}
	opening, rest := splitWall(q, 0.25)
	assert.Equal(t, []v3.Vec{{X: 0}, {X: 1}, {X: 1, Z: 2}, {Z: 2}}, opening)
	assert.Equal(t, []v3.Vec{{X: 1}, {X: 4}, {X: 4, Z: 2}, {X: 1, Z: 2}}, rest)
}

func TestZoneNode(t *testing.T) {
	evalFails(t, `(zone-node "office" :inside :mowitt)`, "invalid value")

	sc := evalScene(t, `
(schedule "vent" (through "12/31" (on "AllDays" "24:00" 1)))
(zone-node "EN_OFFICE" :inside :adaptive :outside :doe-2 :multiplier 2
           :control "Temperature" :venting-schedule "vent")`)
	z := sc.Network.MustLookup("EN_OFFICE").Data.(graph.ZoneData)
	assert.Equal(t, graph.InsideAdaptive, z.Inside)
	assert.Equal(t, graph.OutsideDOE2, z.Outside)
	assert.Equal(t, 2, z.Multiplier)
	assert.Equal(t, []scene.Link{{From: "vent", FromSocket: graph.SockSchedule, To: "EN_OFFICE", ToSocket: graph.SockVASchedule}}, sc.Links)
}

func TestChimneyAndAmbient(t *testing.T) {
	sc := evalScene(t, `
(ambient :building-type "HighRise" :wind-angles (list 0 180))
(chimney-node "stack" :wall-width 0.2 :outlet-area 1
  (inlet "office" :distance 3 :ratio 1 :area 0.5))`)

	amb := sc.Network.MustLookup("ACon").Data.(graph.AmbientConnectionData)
	assert.Equal(t, "HighRise", amb.BuildingType)
	assert.Equal(t, []float64{0, 180}, amb.WindAngles)

	ch := sc.Network.MustLookup("EN_STACK").Data.(graph.ThermalChimneyData)
	require.Len(t, ch.Inlets, 1)
	assert.Equal(t, "EN_OFFICE", ch.Inlets[0].Zone)
	assert.Equal(t, 0.5, ch.Inlets[0].Area)
}

func TestFlowDefaults(t *testing.T) {
	sc := evalScene(t, `
(simple-flow "leak" :link :ela :ela 0.01)
(detailed-flow "window" :link :horizontal :slope-angle 30)
(crack-ref "ref")
(external "north" :height 3 :wpc (list 0.6 -0.3))`)

	leak := sc.Network.MustLookup("leak").Data.(graph.SimpleFlowData)
	assert.Equal(t, graph.FlowELA, leak.Link)
	assert.Equal(t, 0.65, leak.Exponent)
	assert.Equal(t, 4.0, leak.RefPressure)

	win := sc.Network.MustLookup("window").Data.(graph.DetailedFlowData)
	assert.Equal(t, graph.OpeningHorizontal, win.Link)
	assert.Equal(t, 30.0, win.SlopeAngle)
	assert.Equal(t, 1.0, win.OpenFactor)

	assert.Equal(t, 101325.0, sc.Network.MustLookup("ref").Data.(graph.CrackReferenceData).Pressure)
	assert.Equal(t, []float64{0.6, -0.3}, sc.Network.MustLookup("north").Data.(graph.ExternalData).WPC)
}

func TestEMSForms(t *testing.T) {
	sc := evalScene(t, `
(ems-program "night-vent" "EnergyManagementSystem:Program, NightVent, SET Open = 1;")
(ems-script "controller" :module "plugins.vent" :class "Vent")`)

	prog := sc.Network.MustLookup("night-vent").Data.(graph.EMSProgramData)
	assert.Contains(t, prog.Text, "SET Open = 1;")
	script := sc.Network.MustLookup("controller").Data.(graph.EMSScriptedData)
	assert.Equal(t, graph.EMSScriptedData{Module: "plugins.vent", Class: "Vent"}, script)
}

func TestFormErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"timesteps", `(building :timesteps 0)`, "out of range"},
		{"run period", `(run-period :start-month 13)`, "invalid date"},
		{"frames reversed", `(frames 5 2)`, "before start"},
		{"odd until pairs", `(on "Weekdays" "08:00")`, "time/value pairs"},
		{"schedule part", `(schedule "s" 1)`, "expected through"},
		{"duplicate node", `(equipment "e") (infiltration "e")`, "duplicate node name"},
		{"empty object", `(object "o")`, "no faces"},
		{"flat shoebox", `(shoebox :width 1 :depth 0 :height 1)`, "dimensions must be positive"},
		{"construction part", `(construction (vec3 0 0 0))`, "expected layer, pv or frame"},
		{"connect arity", `(connect "a" "b")`, "requires from"},
		{"missing name", `(hvac :heating 20)`, "missing argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.src, tt.want)
		})
	}
}
