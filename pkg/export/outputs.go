package export

import (
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
	"github.com/chazu/envi/pkg/scene"
)

const frequency = "hourly"

var siteVariables = []string{
	"Site Outdoor Air Drybulb Temperature",
	"Site Wind Speed",
	"Site Wind Direction",
	"Site Outdoor Air Relative Humidity",
	"Site Direct Solar Radiation Rate per Area",
	"Site Diffuse Solar Radiation Rate per Area",
}

// OutputVariables returns the zone report variables selected by o. Where
// the airflow network replaces a zone variable, afn picks which of the
// pair is reported.
func OutputVariables(o scene.OutputSet, afn bool) []string {
	catalog := []struct {
		name string
		on   bool
	}{
		{"Zone Air Temperature", o.ZoneTemp},
		{"Zone Other Equipment Total Heating Rate", o.OtherEquipGain},
		{"Zone Air System Sensible Heating Rate", o.HeatingRate},
		{"Zone Air System Sensible Cooling Rate", o.CoolingRate},
		{"Zone Ideal Loads Supply Air Sensible Heating Rate", o.SupplyHeating},
		{"Zone Ideal Loads Heat Recovery Sensible Heating Rate", o.HeatRecovery},
		{"Zone Ideal Loads Supply Air Sensible Cooling Rate", o.SupplyCooling},
		{"Zone Thermal Comfort Fanger Model PMV", o.PMV},
		{"Zone Thermal Comfort Fanger Model PPD", o.PPD},
		{"AFN Zone Infiltration Volume", o.InfiltrationVolume && afn},
		{"AFN Zone Infiltration Air Change Rate", o.InfiltrationACH && afn},
		{"Zone Infiltration Current Density Volume", o.InfiltrationVolume && !afn},
		{"Zone Infiltration Air Change Rate", o.InfiltrationACH && !afn},
		{"Zone Windows Total Transmitted Solar Radiation Rate", o.WindowSolar},
		{"AFN Node CO2 Concentration", o.CO2 && afn},
		{"Zone Air CO2 Concentration", o.CO2 && !afn},
		{"Zone Mean Radiant Temperature", o.MeanRadiant},
		{"Zone People Occupant Count", o.Occupants},
		{"Zone Air Relative Humidity", o.Humidity},
		{"Zone Air Heat Balance Surface Convection Rate", o.HeatBalance},
		{"Generator Produced DC Electric Energy", o.PVEnergy},
		{"Generator Produced DC Electric Power", o.PVPower},
		{"Generator PV Array Efficiency", o.PVEfficiency},
		{"Generator PV Cell Temperature", o.PVTemperature},
	}
	var out []string
	for _, v := range catalog {
		if v.on {
			out = append(out, v.name)
		}
	}
	return out
}

// writeOutputs writes the site variables, the selected zone variables,
// the airflow linkage variables and the summary report request.
func writeOutputs(ec *Context, doc *idf.Document) {
	for _, name := range siteVariables {
		doc.Add(idf.SectionOutputs, idf.OutputVariable("*", name, frequency))
	}
	for _, name := range OutputVariables(ec.Params.Outputs, ec.AFN) {
		doc.Add(idf.SectionOutputs, idf.OutputVariable("*", name, frequency))
	}

	if ec.AFN {
		o := ec.Params.Outputs
		if o.LinkageFlows {
			for _, n := range ec.Network.OfKind(graph.NodeSimpleFlow, graph.NodeDetailedFlow) {
				for _, fs := range ec.flowSurfaces(n) {
					doc.Add(idf.SectionOutputs, idf.OutputVariable(fs.Surface, "AFN Linkage Node 1 to Node 2 Volume Flow Rate", frequency))
					doc.Add(idf.SectionOutputs, idf.OutputVariable(fs.Surface, "AFN Linkage Node 2 to Node 1 Volume Flow Rate", frequency))
					doc.Add(idf.SectionOutputs, idf.OutputVariable(fs.Surface, "AFN Linkage Node 1 to Node 2 Pressure Difference", frequency))
				}
			}
		}
		if o.OpeningFactor {
			for _, n := range ec.Network.OfKind(graph.NodeDetailedFlow) {
				for _, fs := range ec.flowSurfaces(n) {
					doc.Add(idf.SectionOutputs, idf.OutputVariable(fs.Surface, "AFN Surface Venting Window or Door Opening Factor", frequency))
				}
			}
		}
	}

	doc.Add(idf.SectionOutputs, idf.Entry("Output:Table:SummaryReports", []string{"Report 1 Name"}, []string{"AllSummary"}))
}
