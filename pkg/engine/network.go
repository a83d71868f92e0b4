package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/network"
	"github.com/chazu/envi/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Network values
// ---------------------------------------------------------------------------

type sexpThrough struct {
	rule graph.ScheduleRule
}

func (t *sexpThrough) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(through %q)", t.rule.Through)
}
func (t *sexpThrough) Type() *zygo.RegisteredType { return nil }

type sexpDay struct {
	rule graph.DayRule
}

func (d *sexpDay) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(on %q)", d.rule.For)
}
func (d *sexpDay) Type() *zygo.RegisteredType { return nil }

type sexpInlet struct {
	inlet graph.ChimneyInlet
}

func (i *sexpInlet) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(inlet %q)", i.inlet.Zone)
}
func (i *sexpInlet) Type() *zygo.RegisteredType { return nil }

// toNodeName accepts a node reference or a plain node name.
func toNodeName(s zygo.Sexp) (string, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.name, nil
	}
	name, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected node reference or name: %w", err)
	}
	return name, nil
}

// zoneNodeName returns the network node name of a zone given either its
// collection name or its exported name.
func zoneNodeName(zone string) string {
	if strings.HasPrefix(zone, "EN_") {
		return zone
	}
	return scene.ZoneName(zone)
}

// addNode registers a network node under a unique name.
func (b *builder) addNode(form string, kind graph.NodeKind, name string, data graph.NodeData) (*sexpNodeRef, error) {
	if name == "" {
		return nil, fmt.Errorf("%s requires a name", form)
	}
	if b.sc.Network.Lookup(name) != nil {
		return nil, fmt.Errorf("%s: duplicate node name %q", form, name)
	}
	b.sc.Network.AddNode(graph.NewNode(kind, name, data))
	return &sexpNodeRef{name: name}, nil
}

func (b *builder) link(from, fromSocket, to, toSocket string) {
	b.sc.Links = append(b.sc.Links, scene.Link{From: from, FromSocket: fromSocket, To: to, ToSocket: toSocket})
}

// feeds reads the node-valued keywords of a, linking each named node's
// output into input socket in of node.
func (b *builder) feeds(a *kwArgs, node string, inputs map[string][2]string) {
	keys := lo.Keys(inputs)
	sort.Strings(keys)
	for _, key := range keys {
		sock := inputs[key]
		v, ok := a.take(key)
		if !ok {
			continue
		}
		from, err := toNodeName(v)
		if err != nil {
			a.fail(key, err)
			continue
		}
		b.link(from, sock[0], node, sock[1])
	}
}

// zoneLoad links a load node into the zone named by :zone.
func (b *builder) zoneLoad(a *kwArgs, node, socket string) {
	var zone string
	a.str("zone", &zone)
	if zone != "" {
		b.link(node, socket, zoneNodeName(zone), socket)
	}
}

var scheduleInput = [2]string{graph.SockSchedule, graph.SockSchedule}

func scheduleFeed(in string) [2]string {
	return [2]string{graph.SockSchedule, in}
}

var insideConvections = map[string]graph.InsideConvection{
	"default":     graph.InsideDefault,
	"simple":      graph.InsideSimple,
	"detailed":    graph.InsideDetailed,
	"trombe-wall": graph.InsideTrombeWall,
	"adaptive":    graph.InsideAdaptive,
}

var outsideConvections = map[string]graph.OutsideConvection{
	"default":         graph.OutsideDefault,
	"simple-combined": graph.OutsideSimpleCombined,
	"tarp":            graph.OutsideTARP,
	"doe-2":           graph.OutsideDOE2,
	"mowitt":          graph.OutsideMoWiTT,
	"adaptive":        graph.OutsideAdaptive,
}

var simpleFlowKinds = map[string]graph.SimpleFlowKind{
	"crack": graph.FlowCrack,
	"ela":   graph.FlowELA,
}

var openingKinds = map[string]graph.OpeningKind{
	"simple":     graph.OpeningSimple,
	"detailed":   graph.OpeningDetailed,
	"horizontal": graph.OpeningHorizontal,
}

var ventingInputs = map[string][2]string{
	"venting-schedule":  scheduleFeed(graph.SockVASchedule),
	"setpoint-schedule": scheduleFeed(graph.SockTSPSchedule),
}

var networkForms = map[string]builtin{
	// (schedule "office-hours"
	//   (through "12/31" (on "Weekdays" "08:00" 0 "18:00" 1 "24:00" 0)
	//                    (on "AllOtherDays" "24:00" 0)))
	"schedule": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("schedule", args)
		name := a.name(0)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		var d graph.ScheduleData
		for i, part := range flatten(a.positional[1:]) {
			t, ok := part.(*sexpThrough)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("schedule: %s: part %d: expected through, got %T (%s)",
					name, i+1, part, part.SexpString(nil))
			}
			d.Rules = append(d.Rules, t.rule)
		}
		return b.addNode("schedule", graph.NodeSchedule, name, d)
	},

	// (through "12/31" (on ...) ...)
	"through": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("through requires a date and at least one day rule")
		}
		date, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("through: date: %w", err)
		}
		t := &sexpThrough{rule: graph.ScheduleRule{Through: date}}
		for i, part := range flatten(args[1:]) {
			d, ok := part.(*sexpDay)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("through: %s: part %d: expected on, got %T (%s)",
					date, i+1, part, part.SexpString(nil))
			}
			t.rule.Days = append(t.rule.Days, d.rule)
		}
		return t, nil
	},

	// (on "Weekdays" "08:00" 0 "18:00" 1 "24:00" 0)
	"on": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("on requires a day selector")
		}
		days, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("on: days: %w", err)
		}
		pairs := flatten(args[1:])
		if len(pairs) == 0 || len(pairs)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("on: %s: expected time/value pairs, got %d values", days, len(pairs))
		}
		d := &sexpDay{rule: graph.DayRule{For: days}}
		for i := 0; i < len(pairs); i += 2 {
			at, err := toString(pairs[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("on: %s: time %d: %w", days, i/2+1, err)
			}
			v, err := toFloat64(pairs[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("on: %s: value %d: %w", days, i/2+1, err)
			}
			d.rule.Untils = append(d.rule.Untils, graph.Until{Time: at, Value: v})
		}
		return d, nil
	},

	// (hvac "ideal" :zone "office" :template false :heating 20 :cooling 26
	//       :heating-limit "LimitCapacity" :heating-capacity 5000
	//       :outdoor-air 0.008 :schedule "office-hours")
	"hvac": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("hvac", args)
		name := a.name(0)
		var d graph.HVACData
		a.bool("template", &d.Template)
		a.float("heating", &d.HeatingSetpoint)
		a.float("cooling", &d.CoolingSetpoint)
		a.str("heating-limit", &d.HeatingLimit)
		a.float("heating-capacity", &d.HeatingCapacity)
		a.str("cooling-limit", &d.CoolingLimit)
		a.float("cooling-capacity", &d.CoolingCapacity)
		a.float("outdoor-air", &d.OutdoorAir)
		b.zoneLoad(a, name, graph.SockHVAC)
		b.feeds(a, name, map[string][2]string{
			"schedule":         scheduleInput,
			"heating-schedule": scheduleFeed(graph.SockHeatSchedule),
			"cooling-schedule": scheduleFeed(graph.SockCoolSchedule),
		})
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("hvac", graph.NodeHVAC, name, d)
	},

	// (occupancy "people" :zone "office" :method "People" :count 4 :watts 90
	//            :comfort true :co2 true :schedule "office-hours")
	"occupancy": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("occupancy", args)
		name := a.name(0)
		d := graph.OccupancyData{Method: "People"}
		a.str("method", &d.Method)
		a.float("count", &d.Count)
		a.float("watts", &d.Watts)
		a.float("work-efficiency", &d.WorkEff)
		a.float("air-velocity", &d.AirVelocity)
		a.float("clothing", &d.Clothing)
		a.bool("comfort", &d.Comfort)
		a.bool("co2", &d.CO2)
		b.zoneLoad(a, name, graph.SockOccupancy)
		b.feeds(a, name, map[string][2]string{
			"schedule":              scheduleFeed(graph.SockOccSchedule),
			"activity-schedule":     scheduleFeed(graph.SockActSchedule),
			"work-schedule":         scheduleFeed(graph.SockWESchedule),
			"air-velocity-schedule": scheduleFeed(graph.SockAVSchedule),
			"clothing-schedule":     scheduleFeed(graph.SockCloSchedule),
		})
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("occupancy", graph.NodeOccupancy, name, d)
	},

	// (equipment "plug" :zone "office" :method "EquipmentLevel" :level 400)
	"equipment": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("equipment", args)
		name := a.name(0)
		d := graph.EquipmentData{Method: "EquipmentLevel"}
		a.str("method", &d.Method)
		a.float("level", &d.Level)
		b.zoneLoad(a, name, graph.SockEquipment)
		b.feeds(a, name, map[string][2]string{"schedule": scheduleInput})
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("equipment", graph.NodeEquipment, name, d)
	},

	// (infiltration "leaks" :zone "office" :method "AirChanges/Hour" :value 0.5)
	"infiltration": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("infiltration", args)
		name := a.name(0)
		d := graph.InfiltrationData{Method: "Flow/Zone"}
		a.str("method", &d.Method)
		a.float("value", &d.Value)
		b.zoneLoad(a, name, graph.SockInfiltration)
		b.feeds(a, name, map[string][2]string{"schedule": scheduleInput})
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("infiltration", graph.NodeInfiltration, name, d)
	},

	// (zone-node "office" :inside :tarp :outside :doe-2 :multiplier 1
	//            :control "Temperature" :min-vent-open 0.2
	//            :venting-schedule "summer" :setpoint-schedule "vent-setpoint")
	"zone-node": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("zone-node", args)
		name := zoneNodeName(a.name(0))
		d := graph.ZoneData{Zone: name, Multiplier: 1}
		kwEnum(a, "inside", insideConvections, &d.Inside)
		kwEnum(a, "outside", outsideConvections, &d.Outside)
		a.int("multiplier", &d.Multiplier)
		a.str("control", &d.Control)
		a.float("min-vent-open", &d.MinVentOpen)
		b.feeds(a, name, ventingInputs)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("zone-node", graph.NodeZone, name, d)
	},

	// (inlet "office" :distance 3 :ratio 1 :area 0.5)
	"inlet": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("inlet", args)
		in := graph.ChimneyInlet{Zone: zoneNodeName(a.name(0))}
		a.float("distance", &in.Distance)
		a.float("ratio", &in.Ratio)
		a.float("area", &in.Area)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpInlet{inlet: in}, nil
	},

	// (chimney-node "stack" :wall-width 0.2 :outlet-area 1 :discharge-coeff 0.8
	//               (inlet "office" ...))
	"chimney-node": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("chimney-node", args)
		name := zoneNodeName(a.name(0))
		d := graph.ThermalChimneyData{Zone: name}
		a.float("wall-width", &d.WallWidth)
		a.float("outlet-area", &d.OutletArea)
		a.float("discharge-coeff", &d.DischargeCoeff)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		for i, part := range flatten(a.positional[1:]) {
			in, ok := part.(*sexpInlet)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("chimney-node: %s: part %d: expected inlet, got %T (%s)",
					name, i+1, part, part.SexpString(nil))
			}
			d.Inlets = append(d.Inlets, in.inlet)
		}
		return b.addNode("chimney-node", graph.NodeThermalChimney, name, d)
	},

	// (ambient :control "MultizoneWithoutDistribution" :building-type "LowRise"
	//          :azimuth 0 :aspect-ratio 1 :wind-angles (list 0 90 180 270))
	"ambient": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("ambient", args)
		d := network.DefaultAmbient()
		a.str("control", &d.Control)
		a.str("building-type", &d.BuildingType)
		a.float("azimuth", &d.Azimuth)
		a.float("aspect-ratio", &d.AspectRatio)
		a.floats("wind-angles", &d.WindAngles)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("ambient", graph.NodeAmbientConnection, network.AmbientName, d)
	},

	// (crack-ref "reference" :temperature 20 :pressure 101325 :humidity 0)
	"crack-ref": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("crack-ref", args)
		name := a.name(0)
		d := graph.CrackReferenceData{Temperature: 20, Pressure: 101325}
		a.float("temperature", &d.Temperature)
		a.float("pressure", &d.Pressure)
		a.float("humidity", &d.Humidity)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("crack-ref", graph.NodeCrackReference, name, d)
	},

	// (external "north" :height 3 :wpc (list 0.6 -0.3 -0.5 -0.3))
	"external": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("external", args)
		name := a.name(0)
		var d graph.ExternalData
		a.float("height", &d.Height)
		a.floats("wpc", &d.WPC)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("external", graph.NodeExternal, name, d)
	},

	// (simple-flow "crack" :link :crack :coefficient 0.001 :exponent 0.65)
	"simple-flow": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("simple-flow", args)
		name := a.name(0)
		d := graph.SimpleFlowData{Exponent: 0.65, DischargeCoef: 1, RefPressure: 4}
		kwEnum(a, "link", simpleFlowKinds, &d.Link)
		a.float("coefficient", &d.Coefficient)
		a.float("exponent", &d.Exponent)
		a.float("ela", &d.ELA)
		a.float("discharge-coef", &d.DischargeCoef)
		a.float("ref-pressure", &d.RefPressure)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("simple-flow", graph.NodeSimpleFlow, name, d)
	},

	// (detailed-flow "window" :link :detailed :discharge-coef 0.6 :open-factor 1)
	"detailed-flow": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("detailed-flow", args)
		name := a.name(0)
		d := graph.DetailedFlowData{ClosedCoef: 0.001, ClosedExp: 0.65, DischargeCoef: 0.6, OpenFactor: 1}
		kwEnum(a, "link", openingKinds, &d.Link)
		a.float("closed-coef", &d.ClosedCoef)
		a.float("closed-exp", &d.ClosedExp)
		a.float("min-density", &d.MinDensity)
		a.float("discharge-coef", &d.DischargeCoef)
		a.float("open-factor", &d.OpenFactor)
		a.str("control", &d.Control)
		a.float("slope-angle", &d.SlopeAngle)
		a.float("crack-length", &d.CrackLength)
		b.feeds(a, name, ventingInputs)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("detailed-flow", graph.NodeDetailedFlow, name, d)
	},

	// (ems-program "night-vent" `EnergyManagementSystem:Program, ...;`)
	"ems-program": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("ems-program", args)
		name := a.name(0)
		text := a.name(1)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("ems-program", graph.NodeEMSProgram, name, graph.EMSProgramData{Text: text})
	},

	// (ems-script "controller" :module "plugins.vent" :class "Vent")
	"ems-script": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("ems-script", args)
		name := a.name(0)
		var d graph.EMSScriptedData
		a.str("module", &d.Module)
		a.str("class", &d.Class)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return b.addNode("ems-script", graph.NodeEMSScripted, name, d)
	},

	// (connect "crack" "Node 2" "EN_OFFICE" "wall_3_s")
	"connect": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("connect requires from, from socket, to and to socket, got %d arguments", len(args))
		}
		var parts [4]string
		for i, arg := range args {
			var err error
			if i%2 == 0 {
				parts[i], err = toNodeName(arg)
			} else {
				parts[i], err = toString(arg)
			}
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: argument %d: %w", i+1, err)
			}
		}
		b.link(parts[0], parts[1], parts[2], parts[3])
		return zygo.SexpNull, nil
	},
}
