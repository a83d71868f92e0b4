package engine

import (
	"fmt"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Construction values
// ---------------------------------------------------------------------------

type sexpLayer struct {
	data graph.LayerData
}

func (l *sexpLayer) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", l.data.Class, l.data.Material)
}
func (l *sexpLayer) Type() *zygo.RegisteredType { return nil }

type sexpPV struct {
	data graph.PVData
}

func (p *sexpPV) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pv :fraction %g :efficiency %g)", p.data.Fraction, p.data.Efficiency)
}
func (p *sexpPV) Type() *zygo.RegisteredType { return nil }

type sexpFrame struct {
	data graph.FrameData
}

func (f *sexpFrame) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(frame :class :%s :width %g)", f.data.Class, f.data.Width)
}
func (f *sexpFrame) Type() *zygo.RegisteredType { return nil }

// sexpConstruction is a construction tree that has not been attached to a
// material yet.
type sexpConstruction struct {
	data   graph.ConstructionData
	layers []graph.LayerData
	pv     *graph.PVData
	frame  *graph.FrameData
}

func (c *sexpConstruction) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(construction :kind :%s (%d layers))", conKindNames[c.data.Kind], len(c.layers))
}
func (c *sexpConstruction) Type() *zygo.RegisteredType { return nil }

// build returns the construction graph of material name: the construction
// root with its layer chain, outermost first, and any PV and frame nodes.
func (c *sexpConstruction) build(name string) (*graph.Graph, error) {
	g := graph.New()
	root := graph.NewNode(graph.NodeConstruction, name, c.data)
	g.AddNode(root)

	prev, in := root, graph.SockOuterLayer
	for i, l := range c.layers {
		n := graph.NewNode(graph.NodeLayer, fmt.Sprintf("%s layer %d", name, i+1), l)
		g.AddNode(n)
		if err := g.Connect(n, graph.SockLayer, prev, in); err != nil {
			return nil, err
		}
		prev, in = n, graph.SockLayer
	}
	if c.pv != nil {
		n := graph.NewNode(graph.NodePV, name+" pv", *c.pv)
		g.AddNode(n)
		if err := g.Connect(n, graph.SockPV, root, graph.SockPV); err != nil {
			return nil, err
		}
	}
	if c.frame != nil {
		n := graph.NewNode(graph.NodeFrame, name+" frame", *c.frame)
		g.AddNode(n)
		if err := g.Connect(n, graph.SockFrame, root, graph.SockFrame); err != nil {
			return nil, err
		}
	}
	return g, nil
}

var conKinds = map[string]graph.ConKind{
	"wall":      graph.ConWall,
	"floor":     graph.ConFloor,
	"roof":      graph.ConRoof,
	"ceiling":   graph.ConCeiling,
	"partition": graph.ConPartition,
	"window":    graph.ConWindow,
	"door":      graph.ConDoor,
	"shading":   graph.ConShading,
	"aperture":  graph.ConAperture,
	"none":      graph.ConNone,
}

var conKindNames = func() map[graph.ConKind]string {
	out := make(map[graph.ConKind]string, len(conKinds))
	for name, k := range conKinds {
		out[k] = name
	}
	return out
}()

var boundaryKinds = map[string]graph.BoundaryKind{
	"external":  graph.BoundExternal,
	"ground":    graph.BoundGround,
	"zone":      graph.BoundZone,
	"adiabatic": graph.BoundAdiabatic,
}

var frameClasses = map[string]graph.FrameClass{
	"simple":   graph.FrameSimple,
	"detailed": graph.FrameDetailed,
}

// surfaceProps reads the surface absorptance and roughness keywords shared
// by opaque, no-mass and air gap layers.
func surfaceProps(a *kwArgs, d *graph.LayerData) {
	a.str("roughness", &d.Roughness)
	a.float("thermal-abs", &d.ThermalAbs)
	a.float("solar-abs", &d.SolarAbs)
	a.float("visible-abs", &d.VisibleAbs)
}

// layerForm returns the builtin for a layer class. The positional argument
// names the layer material.
func layerForm(form string, class graph.LayerClass) builtin {
	return func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(form, args)
		d := graph.LayerData{Class: class, Material: a.name(0)}
		switch class {
		case graph.LayerOpaque:
			a.float("thickness", &d.Thickness)
			a.float("conductivity", &d.Conductivity)
			a.float("density", &d.Density)
			a.float("specific-heat", &d.SpecificHeat)
			surfaceProps(a, &d)
		case graph.LayerNoMass, graph.LayerAirGap:
			a.float("resistance", &d.Resistance)
			surfaceProps(a, &d)
		case graph.LayerGlazing:
			a.float("thickness", &d.Thickness)
			a.float("conductivity", &d.Conductivity)
			a.float("solar-trans", &d.SolarTrans)
			a.float("solar-refl", &d.SolarRefl)
			a.float("vis-trans", &d.VisTrans)
			a.float("vis-refl", &d.VisRefl)
			a.float("ir-trans", &d.IRTrans)
			a.float("emissivity", &d.Emissivity)
		case graph.LayerGas:
			a.float("thickness", &d.Thickness)
			d.Gas = d.Material
			a.str("gas", &d.Gas)
		}
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpLayer{data: d}, nil
	}
}

var constructionForms = map[string]builtin{
	// (layer "Brick" :thickness 0.1 :conductivity 0.72 :density 1920 :specific-heat 840)
	"layer": layerForm("layer", graph.LayerOpaque),
	// (nomass "Insulation" :resistance 2.5)
	"nomass": layerForm("nomass", graph.LayerNoMass),
	// (airgap "Cavity" :resistance 0.18)
	"airgap": layerForm("airgap", graph.LayerAirGap),
	// (glazing "Clear 6mm" :thickness 0.006 :conductivity 0.9 :solar-trans 0.77 ...)
	"glazing": layerForm("glazing", graph.LayerGlazing),
	// (gas "Argon" :thickness 0.012)
	"gas": layerForm("gas", graph.LayerGas),

	// (pv :fraction 0.8 :efficiency 0.18 :heat-transfer "Decoupled")
	"pv": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("pv", args)
		var d graph.PVData
		a.float("fraction", &d.Fraction)
		a.float("efficiency", &d.Efficiency)
		a.str("heat-transfer", &d.HeatTransfer)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPV{data: d}, nil
	},

	// (frame :class :detailed :width 0.05 :conductance 5.7 ...)
	"frame": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("frame", args)
		var d graph.FrameData
		kwEnum(a, "class", frameClasses, &d.Class)
		a.float("width", &d.Width)
		a.float("area-percent", &d.AreaPercent)
		a.float("conductance", &d.Conductance)
		a.float("outside-projection", &d.OutsideProjection)
		a.float("inside-projection", &d.InsideProjection)
		a.str("divider-type", &d.DividerType)
		a.float("divider-width", &d.DividerWidth)
		a.int("horizontal-dividers", &d.HorizontalDividers)
		a.int("vertical-dividers", &d.VerticalDividers)
		a.float("divider-conductance", &d.DividerConductance)
		a.float("solar-abs", &d.SolarAbs)
		a.float("visible-abs", &d.VisibleAbs)
		a.float("emissivity", &d.Emissivity)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpFrame{data: d}, nil
	},

	// (construction :kind :wall :boundary :external :airflow true
	//   (layer ...) (nomass ...) (pv ...) (frame ...))
	"construction": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("construction", args)
		c := &sexpConstruction{data: graph.ConstructionData{Active: true}}
		kwEnum(a, "kind", conKinds, &c.data.Kind)
		kwEnum(a, "boundary", boundaryKinds, &c.data.Boundary)
		a.bool("active", &c.data.Active)
		a.bool("airflow", &c.data.Airflow)
		a.float("frame-area", &c.data.FrameArea)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		for i, part := range flatten(a.positional) {
			switch v := part.(type) {
			case *sexpLayer:
				c.layers = append(c.layers, v.data)
			case *sexpPV:
				d := v.data
				c.pv = &d
			case *sexpFrame:
				d := v.data
				c.frame = &d
			default:
				return zygo.SexpNull, fmt.Errorf("construction: part %d: expected layer, pv or frame, got %T (%s)",
					i+1, part, part.SexpString(nil))
			}
		}
		return c, nil
	},

	// (material "wall" (construction ...)) or (material "void")
	"material": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("material", args)
		name := a.name(0)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		m := &scene.Material{Name: name}
		if len(a.positional) > 1 {
			c, ok := a.positional[1].(*sexpConstruction)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("material: %s: expected construction, got %T (%s)",
					name, a.positional[1], a.positional[1].SexpString(nil))
			}
			g, err := c.build(name)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: %s: %w", name, err)
			}
			m.Graph = g
		}
		b.sc.AddMaterial(m)
		return &zygo.SexpStr{S: name}, nil
	},
}
