package export

import (
	"fmt"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
	"github.com/chazu/envi/pkg/network"
)

// wpcArray names the wind pressure coefficient direction array.
const wpcArray = "WPC Array"

// flowSurfaces returns the exported surfaces served by flow node n. A
// surface hosting an opening is represented by the opening.
func (c *Context) flowSurfaces(n *graph.Node) []network.FlowSurface {
	out := network.FlowSurfaces(c.Network, n)
	for i, fs := range out {
		if win, ok := c.fenestration[fs.Surface]; ok {
			out[i].Surface = win
		}
	}
	return out
}

// writeAirflow writes the airflow network. It is active only when the
// network holds at least one simple or detailed flow link.
func writeAirflow(ec *Context, doc *idf.Document) {
	g := ec.Network
	detailed := g.OfKind(graph.NodeDetailedFlow)
	simple := g.OfKind(graph.NodeSimpleFlow)
	if len(detailed)+len(simple) == 0 {
		return
	}
	ec.AFN = true

	zones := ec.zoneNodes()
	wpc := false
	if len(zones) > 0 {
		for _, n := range g.OfKind(graph.NodeAmbientConnection) {
			d, ok := n.Data.(graph.AmbientConnectionData)
			if !ok {
				continue
			}
			wpc = wpc || len(d.WindAngles) > 0
			writeSimulationControl(doc, n.Name, d)
		}
	}

	crack := ""
	for _, n := range g.OfKind(graph.NodeCrackReference) {
		d, ok := n.Data.(graph.CrackReferenceData)
		if !ok {
			continue
		}
		if crack == "" {
			crack = n.Name
		}
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:ReferenceCrackConditions",
			[]string{"Name", "Reference Temperature (C)", "Reference Barometric Pressure (Pa)",
				"Reference Humidity Ratio (kgWater/kgDryAir)"},
			idf.Values(n.Name, d.Temperature, d.Pressure, d.Humidity)))
	}

	if wpc {
		for _, n := range g.OfKind(graph.NodeExternal) {
			if d, ok := n.Data.(graph.ExternalData); ok {
				writeExternal(doc, n.Name, d)
			}
		}
	}

	for _, n := range zones {
		d, ok := n.Data.(graph.ZoneData)
		if !ok {
			continue
		}
		control := d.Control
		if control == "" {
			control = "NoVent"
		}
		tsp, va := "", ""
		if _, ok := ec.scheduleRules(n, graph.SockTSPSchedule); ok {
			tsp = d.Zone + "_tspsched"
		}
		if _, ok := ec.scheduleRules(n, graph.SockVASchedule); ok {
			va = d.Zone + "_vasched"
		}
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Zone",
			[]string{"Zone Name", "Ventilation Control Mode", "Ventilation Control Zone Temperature Setpoint Schedule Name",
				"Minimum Venting Open Factor", "Indoor and Outdoor Temperature Difference Lower Limit For Maximum Venting Open Factor (deltaC)",
				"Indoor and Outdoor Temperature Difference Upper Limit for Minimum Venting Open Factor (deltaC)",
				"Indoor and Outdoor Enthalpy Difference Lower Limit For Maximum Venting Open Factor (deltaJ/kg)",
				"Indoor and Outdoor Enthalpy Difference Upper Limit for Minimum Venting Open Factor (deltaJ/kg)",
				"Venting Availability Schedule Name"},
			idf.Values(d.Zone, control, tsp, d.MinVentOpen, 0, 100, 0, 300000, va)))
	}

	for _, n := range detailed {
		if d, ok := n.Data.(graph.DetailedFlowData); ok {
			writeOpening(ec, doc, n, d, wpc)
		}
	}
	for _, n := range simple {
		if d, ok := n.Data.(graph.SimpleFlowData); ok {
			writeLeakage(ec, doc, n, d, crack, wpc)
		}
	}
}

func writeSimulationControl(doc *idf.Document, name string, d graph.AmbientConnectionData) {
	wpcType, height := "SurfaceAverageCalculation", "OpeningHeight"
	if len(d.WindAngles) > 0 {
		wpcType, height = "Input", "ExternalNode"
	}
	doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:SimulationControl",
		[]string{"Name", "AirflowNetwork Control", "Wind Pressure Coefficient Type",
			"Height Selection for Local Wind Pressure Calculation", "Building Type",
			"Maximum Number of Iterations (dimensionless)", "Initialization Type",
			"Relative Airflow Convergence Tolerance (dimensionless)",
			"Absolute Airflow Convergence Tolerance (kg/s)", "Convergence Acceleration Limit (dimensionless)",
			"Azimuth Angle of Long Axis of Building (deg)",
			"Ratio of Building Width Along Short Axis to Width Along Long Axis"},
		idf.Values(name, d.Control, wpcType, height, d.BuildingType, 500, "ZeroNodePressures",
			"1e-4", "1e-6", -0.5, d.Azimuth, d.AspectRatio)))

	if len(d.WindAngles) == 0 {
		return
	}
	fields := []string{"Name"}
	values := []string{wpcArray}
	for i, a := range d.WindAngles {
		fields = append(fields, fmt.Sprintf("Wind Direction %d (deg)", i+1))
		values = append(values, idf.Num(a))
	}
	doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:WindPressureCoefficientArray", fields, values))
}

func writeExternal(doc *idf.Document, name string, d graph.ExternalData) {
	doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:ExternalNode",
		[]string{"Name", "External Node Height (m)", "Wind Pressure Coefficient Values Object Name"},
		idf.Values(name, d.Height, name+"_wpcv")))

	fields := []string{"Name", "AirflowNetwork:MultiZone:WindPressureCoefficientArray Name"}
	values := []string{name + "_wpcv", wpcArray}
	for i, v := range d.WPC {
		fields = append(fields, fmt.Sprintf("Wind Pressure Coefficient Value %d (dimensionless)", i+1))
		values = append(values, idf.Num(v))
	}
	doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:WindPressureCoefficientValues", fields, values))
}

func writeOpening(ec *Context, doc *idf.Document, n *graph.Node, d graph.DetailedFlowData, wpc bool) {
	switch d.Link {
	case graph.OpeningDetailed:
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Component:DetailedOpening",
			[]string{"Name", "Air Mass Flow Coefficient When Opening is Closed (kg/s-m)",
				"Air Mass Flow Exponent When Opening is Closed (dimensionless)",
				"Type of Rectangular Large Vertical Opening (LVO)", "Extra Crack Length or Height of Pivoting Axis (m)",
				"Number of Sets of Opening Factor Data", "Opening Factor 1 (dimensionless)",
				"Discharge Coefficient for Opening Factor 1 (dimensionless)", "Width Factor for Opening Factor 1 (dimensionless)",
				"Height Factor for Opening Factor 1 (dimensionless)", "Start Height Factor for Opening Factor 1 (dimensionless)",
				"Opening Factor 2 (dimensionless)", "Discharge Coefficient for Opening Factor 2 (dimensionless)",
				"Width Factor for Opening Factor 2 (dimensionless)", "Height Factor for Opening Factor 2 (dimensionless)",
				"Start Height Factor for Opening Factor 2 (dimensionless)"},
			idf.Values(n.Name, d.ClosedCoef, d.ClosedExp, "NonPivoted", d.CrackLength, 2,
				0, d.DischargeCoef, 0, 1, 0, 1, d.DischargeCoef, 1, 1, 0)))
	case graph.OpeningHorizontal:
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Component:HorizontalOpening",
			[]string{"Name", "Air Mass Flow Coefficient When Opening is Closed (kg/s-m)",
				"Air Mass Flow Exponent When Opening is Closed (dimensionless)",
				"Sloping Plane Angle (deg)", "Discharge Coefficient (dimensionless)"},
			idf.Values(n.Name, d.ClosedCoef, d.ClosedExp, d.SlopeAngle, d.DischargeCoef)))
	default:
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Component:SimpleOpening",
			[]string{"Name", "Air Mass Flow Coefficient When Opening is Closed (kg/s-m)",
				"Air Mass Flow Exponent When Opening is Closed (dimensionless)",
				"Minimum Density Difference for Two-Way Flow (kg/m3)", "Discharge Coefficient (dimensionless)"},
			idf.Values(n.Name, d.ClosedCoef, d.ClosedExp, d.MinDensity, d.DischargeCoef)))
	}

	control := d.Control
	if control == "" {
		control = "ZoneLevel"
	}
	tsp, va := "", ""
	if _, ok := ec.scheduleRules(n, graph.SockTSPSchedule); ok {
		tsp = n.Name + "_tspsched"
	}
	if _, ok := ec.scheduleRules(n, graph.SockVASchedule); ok {
		va = n.Name + "_vasched"
	}
	for _, fs := range ec.flowSurfaces(n) {
		ext := ""
		if wpc {
			ext = fs.External
		}
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Surface",
			[]string{"Surface Name", "Leakage Component Name", "External Node Name",
				"Window/Door Opening Factor, or Crack Factor (dimensionless)", "Ventilation Control Mode",
				"Ventilation Control Zone Temperature Setpoint Schedule Name", "Minimum Venting Open Factor (dimensionless)",
				"Indoor and Outdoor Temperature Difference Lower Limit For Maximum Venting Open Factor (deltaC)",
				"Indoor and Outdoor Temperature Difference Upper Limit for Minimum Venting Open Factor (deltaC)",
				"Indoor and Outdoor Enthalpy Difference Lower Limit For Maximum Venting Open Factor (deltaJ/kg)",
				"Indoor and Outdoor Enthalpy Difference Upper Limit for Minimum Venting Open Factor (deltaJ/kg)",
				"Venting Availability Schedule Name"},
			idf.Values(fs.Surface, n.Name, ext, d.OpenFactor, control, tsp, 0, 0, 100, 0, 300000, va)))
	}
}

func writeLeakage(ec *Context, doc *idf.Document, n *graph.Node, d graph.SimpleFlowData, crack string, wpc bool) {
	switch d.Link {
	case graph.FlowELA:
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Surface:EffectiveLeakageArea",
			[]string{"Name", "Effective Leakage Area (m2)", "Discharge Coefficient (dimensionless)",
				"Reference Pressure Difference (Pa)", "Air Mass Flow Exponent (dimensionless)"},
			idf.Values(n.Name, d.ELA, d.DischargeCoef, d.RefPressure, d.Exponent)))
	default:
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Surface:Crack",
			[]string{"Name", "Air Mass Flow Coefficient at Reference Conditions (kg/s)",
				"Air Mass Flow Exponent (dimensionless)", "Reference Crack Conditions"},
			idf.Values(n.Name, d.Coefficient, d.Exponent, crack)))
	}
	for _, fs := range ec.flowSurfaces(n) {
		ext := ""
		if wpc {
			ext = fs.External
		}
		doc.Add(idf.SectionAirflow, idf.Entry("AirflowNetwork:MultiZone:Surface",
			[]string{"Surface Name", "Leakage Component Name", "External Node Name",
				"Window/Door Opening Factor, or Crack Factor (dimensionless)"},
			idf.Values(fs.Surface, n.Name, ext, 1.0)))
	}
}
