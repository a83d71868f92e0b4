package export

import (
	"fmt"

	"github.com/chazu/envi/pkg/idf"
)

func locationName(loc string) string {
	if loc == "" {
		return "Default"
	}
	return loc
}

// writeHeader writes the version header, building, simulation control and
// run period records.
func writeHeader(ec *Context, doc *idf.Document) {
	p := ec.Params
	doc.Addf(idf.SectionHeader, "!- Written by envi\n!- Date: %s\n\nVERSION,%s;\n\n",
		ec.Now.Format("2006-01-02 15:04"), p.EPVersion)

	doc.Add(idf.SectionBuilding, idf.Entry("Building",
		[]string{"Name", "North Axis (deg)", "Terrain", "Loads Convergence Tolerance Value",
			"Temperature Convergence Tolerance Value (deltaC)", "Solar Distribution",
			"Maximum Number of Warmup Days(from MLC TCM)"},
		idf.Values(locationName(p.Location), fmt.Sprintf("%.2f", p.NorthAxis), p.Terrain.String(),
			"0.004", "0.4", "FullInteriorAndExteriorWithReflections", "15")))

	sim := [][2]string{
		{"Time Step in Hours", fmt.Sprintf("Timestep, %d", p.Timesteps)},
		{"Algorithm", "SurfaceConvectionAlgorithm:Inside, TARP"},
		{"Algorithm", "SurfaceConvectionAlgorithm:Outside, TARP"},
		{"Default frequency of calculation", fmt.Sprintf("ShadowCalculation, %s, Periodic", p.ShadowCalc)},
		{"no zone sizing, system sizing, plant sizing, no design day, use weather file", "SimulationControl, No,No,No,No,Yes"},
	}
	for _, line := range sim {
		doc.Add(idf.SectionSimulation, idf.Entry("", []string{line[0]}, []string{line[1]}))
	}
	doc.Add(idf.SectionSimulation, "\nHeatBalanceAlgorithm, ConductionTransferFunction;\n\n")

	doc.Add(idf.SectionRunPeriod, idf.Entry("RunPeriod",
		[]string{"Name", "Begin Month", "Begin Day of Month", "Begin Year", "End Month", "End Day of Month",
			"End Year", "Day of Week for Start Day", "Use Weather File Holidays and Special Days",
			"Use Weather File Daylight Saving Period", "Apply Weekend Holiday Rule",
			"Use Weather File Rain Indicators", "Use Weather File Snow Indicators"},
		idf.Values(locationName(p.Location), p.Start.Month, p.Start.Day, "", p.End.Month, p.End.Day,
			"", "", "Yes", "Yes", "No", "Yes", "Yes")))
}
