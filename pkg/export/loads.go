package export

import (
	"fmt"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
)

// writeGenerators writes the electric load center gathering every PV
// generator. Nothing is written when no surface carries one.
func writeGenerators(ec *Context, doc *idf.Document) {
	if !ec.Constructions.HasPV() || len(ec.Generators) == 0 {
		return
	}
	doc.Add(idf.SectionGenerators, idf.Entry("ElectricLoadCenter:Distribution",
		[]string{"Name", "Generator List Name", "Generator Operation Scheme Type",
			"Generator Demand Limit Scheme Purchased Electric Demand Limit {W}",
			"Generator Track Schedule Name Scheme Schedule Name",
			"Generator Track Meter Scheme Meter Name", "Electrical Buss Type", "Inverter Name"},
		[]string{"Electric Load Center", "PVs", "Baseload", "0", "", "", "DirectCurrentWithInverter", "Simple Ideal Inverter"}))
	doc.Add(idf.SectionGenerators, idf.Entry("ElectricLoadCenter:Inverter:Simple",
		[]string{"Name", "Availability Schedule Name", "Zone Name", "Radiative Fraction", "Inverter Efficiency"},
		[]string{"Simple Ideal Inverter", "", "", "0.0", "1.0"}))

	fields := []string{"Name"}
	values := []string{"PVs"}
	for i, gen := range ec.Generators {
		fields = append(fields,
			fmt.Sprintf("Generator %d Name", i),
			fmt.Sprintf("Generator %d Object Type", i),
			fmt.Sprintf("Generator %d Rated Electric Power Output (W)", i),
			fmt.Sprintf("Generator %d Availability Schedule Name", i),
			fmt.Sprintf("Generator %d Rated Thermal to Electrical Power Ratio", i))
		values = append(values, gen, "Generator:Photovoltaic", "20000", "", "")
	}
	doc.Add(idf.SectionGenerators, idf.Entry("ElectricLoadCenter:Generators", fields, values))
}

// writeLoads writes the thermostat, equipment, HVAC, occupancy, other
// equipment, contaminant and infiltration records of every zone node.
func writeLoads(ec *Context, doc *idf.Document) {
	contaminants := false
	for _, zn := range ec.zoneNodes() {
		zone, _ := zn.ZoneName()

		if h := ec.upstream(zn, graph.SockHVAC); h != nil {
			if d, ok := h.Data.(graph.HVACData); ok {
				writeHVAC(ec, doc, zone, d)
			}
		}
		if d, ok := zn.Data.(graph.ThermalChimneyData); ok {
			writeChimney(doc, zone, d)
		}
		if o := ec.upstream(zn, graph.SockOccupancy); o != nil {
			if d, ok := o.Data.(graph.OccupancyData); ok {
				writePeople(doc, zone, d)
				if d.CO2 && d.Comfort && !contaminants {
					doc.Add(idf.SectionContaminants, idf.Entry("ZoneAirContaminantBalance",
						[]string{"Carbon Dioxide Concentration", "Outdoor Carbon Dioxide Schedule Name",
							"Generic Contaminant Concentration", "Outdoor Generic Contaminant Schedule Name"},
						[]string{"Yes", outdoorCO2, "No", ""}))
					contaminants = true
				}
			}
		}
		if q := ec.upstream(zn, graph.SockEquipment); q != nil {
			if d, ok := q.Data.(graph.EquipmentData); ok {
				writeOtherEquipment(doc, zone, d)
			}
		}
		if f := ec.upstream(zn, graph.SockInfiltration); f != nil {
			if d, ok := f.Data.(graph.InfiltrationData); ok {
				writeInfiltration(doc, zone, d)
			}
		}
	}
}

// capacity returns the capacity value for a limit mode; unlimited systems
// leave it blank.
func capacity(limit string, v float64) string {
	if limit == "" || limit == "NoLimit" {
		return ""
	}
	if v <= 0 {
		return "autosize"
	}
	return idf.Num(v)
}

func limitMode(limit string) string {
	if limit == "" {
		return "NoLimit"
	}
	return limit
}

func writeHVAC(ec *Context, doc *idf.Document, zone string, d graph.HVACData) {
	if d.Template {
		ec.HVACTemplate = true
		doc.Add(idf.SectionThermostats, idf.Entry("HVACTemplate:Thermostat",
			[]string{"Name", "Heating Setpoint Schedule Name", "Constant Heating Setpoint (C)",
				"Cooling Setpoint Schedule Name", "Constant Cooling Setpoint (C)"},
			[]string{zone + "_thermostat", zone + "_htspsched", "", zone + "_ctspsched", ""}))
		doc.Add(idf.SectionHVAC, idf.Entry("HVACTemplate:Zone:IdealLoadsAirSystem",
			[]string{"Zone Name", "Template Thermostat Name", "System Availability Schedule Name",
				"Maximum Heating Supply Air Temperature (C)", "Minimum Cooling Supply Air Temperature (C)",
				"Maximum Heating Supply Air Humidity Ratio (kgWater/kgDryAir)",
				"Minimum Cooling Supply Air Humidity Ratio (kgWater/kgDryAir)",
				"Heating Limit", "Maximum Heating Air Flow Rate (m3/s)", "Maximum Sensible Heating Capacity (W)",
				"Cooling Limit", "Maximum Cooling Air Flow Rate (m3/s)", "Maximum Total Cooling Capacity (W)"},
			[]string{zone, zone + "_thermostat", zone + "_hvacsched", "50", "13", "0.015", "0.009",
				limitMode(d.HeatingLimit), "", capacity(d.HeatingLimit, d.HeatingCapacity),
				limitMode(d.CoolingLimit), "", capacity(d.CoolingLimit, d.CoolingCapacity)}))
		return
	}

	doc.Add(idf.SectionThermostats, idf.Entry("ThermostatSetpoint:DualSetpoint",
		[]string{"Name", "Heating Setpoint Temperature Schedule Name", "Cooling Setpoint Temperature Schedule Name"},
		[]string{zone + "_dsp", zone + "_htspsched", zone + "_ctspsched"}))

	doc.Add(idf.SectionEquipment, idf.Entry("ZoneHVAC:EquipmentConnections",
		[]string{"Zone Name", "Zone Conditioning Equipment List Name", "Zone Air Inlet Node or NodeList Name",
			"Zone Air Exhaust Node or NodeList Name", "Zone Air Node Name", "Zone Return Air Node Name"},
		[]string{zone, zone + "_eqlist", zone + "_supairnode", "", zone + "_airnode", zone + "_retairnode"}))
	doc.Add(idf.SectionEquipment, idf.Entry("ZoneHVAC:EquipmentList",
		[]string{"Name", "Load Distribution Scheme", "Zone Equipment 1 Object Type", "Zone Equipment 1 Name",
			"Zone Equipment 1 Cooling Sequence", "Zone Equipment 1 Heating or No-Load Sequence"},
		[]string{zone + "_eqlist", "SequentialLoad", "ZoneHVAC:IdealLoadsAirSystem", zone + "_Air", "1", "1"}))

	oa := ""
	if d.OutdoorAir > 0 {
		oa = zone + "_oa"
	}
	doc.Add(idf.SectionHVAC, idf.Entry("ZoneHVAC:IdealLoadsAirSystem",
		[]string{"Name", "Availability Schedule Name", "Zone Supply Air Node Name", "Zone Exhaust Air Node Name",
			"System Inlet Air Node Name", "Maximum Heating Supply Air Temperature (C)",
			"Minimum Cooling Supply Air Temperature (C)", "Maximum Heating Supply Air Humidity Ratio (kgWater/kgDryAir)",
			"Minimum Cooling Supply Air Humidity Ratio (kgWater/kgDryAir)", "Heating Limit",
			"Maximum Heating Air Flow Rate (m3/s)", "Maximum Sensible Heating Capacity (W)", "Cooling Limit",
			"Maximum Cooling Air Flow Rate (m3/s)", "Maximum Total Cooling Capacity (W)",
			"Heating Availability Schedule Name", "Cooling Availability Schedule Name",
			"Dehumidification Control Type", "Cooling Sensible Heat Ratio (dimensionless)",
			"Humidification Control Type", "Design Specification Outdoor Air Object Name"},
		[]string{zone + "_Air", zone + "_hvacsched", zone + "_supairnode", "", "", "50", "13", "0.015", "0.009",
			limitMode(d.HeatingLimit), "", capacity(d.HeatingLimit, d.HeatingCapacity),
			limitMode(d.CoolingLimit), "", capacity(d.CoolingLimit, d.CoolingCapacity),
			"", "", "ConstantSensibleHeatRatio", "0.7", "None", oa}))
	if oa != "" {
		doc.Add(idf.SectionHVAC, idf.Entry("DesignSpecification:OutdoorAir",
			[]string{"Name", "Outdoor Air Method", "Outdoor Air Flow per Person (m3/s-person)"},
			[]string{oa, "Flow/Person", idf.Num(d.OutdoorAir)}))
	}
}

func writeChimney(doc *idf.Document, zone string, d graph.ThermalChimneyData) {
	fields := []string{"Name", "Zone Name", "Availability Schedule Name", "Width of the Absorber Wall (m)",
		"Cross Sectional Area of Air Channel Outlet (m2)", "Discharge Coefficient"}
	values := idf.Values(zone+"_TC", zone, "", d.WallWidth, d.OutletArea, d.DischargeCoeff)
	for i, in := range d.Inlets {
		n := i + 1
		fields = append(fields,
			fmt.Sprintf("Zone %d Name", n),
			fmt.Sprintf("Distance from Top of Thermal Chimney to Inlet %d (m)", n),
			fmt.Sprintf("Relative Ratios of Air Flow Rates Passing through Zone %d", n),
			fmt.Sprintf("Cross Sectional Areas of Air Channel Inlet %d (m2)", n))
		values = append(values, idf.Values(in.Zone, in.Distance, in.Ratio, in.Area)...)
	}
	doc.Add(idf.SectionHVAC, idf.Entry("ZoneThermalChimney", fields, values))
}

func writePeople(doc *idf.Document, zone string, d graph.OccupancyData) {
	method := d.Method
	if method == "" {
		method = "People"
	}
	var count, perArea, areaPer string
	switch method {
	case "People/Area":
		perArea = idf.Num(d.Count)
	case "Area/Person":
		areaPer = idf.Num(d.Count)
	default:
		count = idf.Num(d.Count)
	}
	comfort := ""
	if d.Comfort {
		comfort = "Fanger"
	}
	doc.Add(idf.SectionOccupancy, idf.Entry("People",
		[]string{"Name", "Zone or ZoneList Name", "Number of People Schedule Name",
			"Number of People Calculation Method", "Number of People", "People per Zone Floor Area (person/m2)",
			"Zone Floor Area per Person (m2/person)", "Fraction Radiant", "Sensible Heat Fraction",
			"Activity Level Schedule Name", "Carbon Dioxide Generation Rate (m3/s-W)",
			"Enable ASHRAE 55 Comfort Warnings", "Mean Radiant Temperature Calculation Type",
			"Surface Name/Angle Factor List Name", "Work Efficiency Schedule Name",
			"Clothing Insulation Calculation Method", "Clothing Insulation Calculation Method Schedule Name",
			"Clothing Insulation Schedule Name", "Air Velocity Schedule Name", "Thermal Comfort Model 1 Type"},
		[]string{zone + "_occupancy", zone, zone + "_occsched", method, count, perArea, areaPer, "0.3",
			"autocalculate", zone + "_actsched", "3.82e-08", "No", "ZoneAveraged", "", zone + "_wesched",
			"ClothingInsulationSchedule", "", zone + "_closched", zone + "_avsched", comfort}))
}

func writeOtherEquipment(doc *idf.Document, zone string, d graph.EquipmentData) {
	method := d.Method
	if method == "" {
		method = "EquipmentLevel"
	}
	var level, perArea, perPerson string
	switch method {
	case "Watts/Area":
		perArea = idf.Num(d.Level)
	case "Watts/Person":
		perPerson = idf.Num(d.Level)
	default:
		level = idf.Num(d.Level)
	}
	doc.Add(idf.SectionOtherEquipment, idf.Entry("OtherEquipment",
		[]string{"Name", "Fuel Type", "Zone or ZoneList Name", "Schedule Name", "Design Level Calculation Method",
			"Design Level (W)", "Power per Zone Floor Area (W/m2)", "Power per Person (W/person)",
			"Fraction Latent", "Fraction Radiant", "Fraction Lost"},
		[]string{zone + "_otherequip", "Electricity", zone, zone + "_eqsched", method, level, perArea, perPerson,
			"0", "0.3", "0"}))
}

func writeInfiltration(doc *idf.Document, zone string, d graph.InfiltrationData) {
	method := d.Method
	if method == "" {
		method = "Flow/Zone"
	}
	vals := map[string]string{method: idf.Num(d.Value)}
	doc.Add(idf.SectionInfiltration, idf.Entry("ZoneInfiltration:DesignFlowRate",
		[]string{"Name", "Zone or ZoneList Name", "Schedule Name", "Design Flow Rate Calculation Method",
			"Design Flow Rate (m3/s)", "Flow per Zone Floor Area (m3/s-m2)", "Flow per Exterior Surface Area (m3/s-m2)",
			"Air Changes per Hour (1/hr)", "Constant Term Coefficient", "Temperature Term Coefficient",
			"Velocity Term Coefficient", "Velocity Squared Term Coefficient"},
		[]string{zone + "_infiltration", zone, zone + "_infsched", method, vals["Flow/Zone"], vals["Flow/Area"],
			vals["Flow/ExteriorArea"], vals["AirChanges/Hour"], "1", "0", "0", "0"}))
}
