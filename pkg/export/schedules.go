package export

import (
	"fmt"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
)

// Schedule type limit names.
const (
	limitTemperature = "Temperature"
	limitControl     = "Control Type"
	limitFraction    = "Fraction"
	limitAny         = "Any Number"
)

// outdoorCO2 is the outdoor carbon dioxide schedule referenced by the
// contaminant balance.
const outdoorCO2 = "Default outdoor CO2 levels 400 ppm"

// scheduleRules returns the authored rules feeding input in of n.
func (c *Context) scheduleRules(n *graph.Node, in string) ([]graph.ScheduleRule, bool) {
	up := c.upstream(n, in)
	if up == nil || up.Kind != graph.NodeSchedule || up.Bad {
		return nil, false
	}
	d, ok := up.Data.(graph.ScheduleData)
	if !ok {
		return nil, false
	}
	return d.Rules, true
}

// slotSchedule writes the schedule feeding input in of n under name, or a
// constant schedule holding def when the input is unlinked.
func (c *Context) slotSchedule(doc *idf.Document, n *graph.Node, in, name, limits, def string) {
	if rules, ok := c.scheduleRules(n, in); ok {
		doc.Add(idf.SectionSchedules, idf.Compact(name, limits, rules))
		return
	}
	doc.Add(idf.SectionSchedules, idf.ConstantSchedule(name, limits, def))
}

// authoredSchedule writes the schedule feeding input in of n under name.
// Nothing is written when the input is unlinked.
func (c *Context) authoredSchedule(doc *idf.Document, n *graph.Node, in, name, limits string) bool {
	rules, ok := c.scheduleRules(n, in)
	if ok {
		doc.Add(idf.SectionSchedules, idf.Compact(name, limits, rules))
	}
	return ok
}

func writeSchedules(ec *Context, doc *idf.Document) {
	doc.Add(idf.SectionSchedules, idf.Entry("ScheduleTypeLimits",
		[]string{"Name", "Lower Limit Value", "Upper Limit Value", "Numeric Type", "Unit Type"},
		idf.Values(limitTemperature, -60, 200, "CONTINUOUS", "Temperature")))
	doc.Add(idf.SectionSchedules, idf.Entry("ScheduleTypeLimits",
		[]string{"Name", "Lower Limit Value", "Upper Limit Value", "Numeric Type"},
		idf.Values(limitControl, 0, 4, "DISCRETE")))
	doc.Add(idf.SectionSchedules, idf.Entry("ScheduleTypeLimits",
		[]string{"Name", "Lower Limit Value", "Upper Limit Value", "Numeric Type"},
		idf.Values(limitFraction, 0, 1, "CONTINUOUS")))
	doc.Add(idf.SectionSchedules, idf.Entry("ScheduleTypeLimits", []string{"Name"}, []string{limitAny}))
	doc.Add(idf.SectionSchedules, idf.ConstantSchedule(outdoorCO2, limitAny, "400"))

	for _, zn := range ec.zoneNodes() {
		zone, _ := zn.ZoneName()
		ec.authoredSchedule(doc, zn, graph.SockVASchedule, zone+"_vasched", limitFraction)
		ec.authoredSchedule(doc, zn, graph.SockTSPSchedule, zone+"_tspsched", limitTemperature)

		if h := ec.upstream(zn, graph.SockHVAC); h != nil {
			if d, ok := h.Data.(graph.HVACData); ok {
				writeHVACSchedules(ec, doc, zone, h, d)
			}
		}
		if o := ec.upstream(zn, graph.SockOccupancy); o != nil {
			if d, ok := o.Data.(graph.OccupancyData); ok {
				writeOccupancySchedules(ec, doc, zone, o, d)
			}
		}
		if q := ec.upstream(zn, graph.SockEquipment); q != nil {
			ec.slotSchedule(doc, q, graph.SockSchedule, zone+"_eqsched", limitFraction, "1")
		}
		if f := ec.upstream(zn, graph.SockInfiltration); f != nil {
			ec.slotSchedule(doc, f, graph.SockSchedule, zone+"_infsched", limitFraction, "1")
		}
	}

	for _, n := range ec.Network.OfKind(graph.NodeDetailedFlow) {
		ec.authoredSchedule(doc, n, graph.SockVASchedule, n.Name+"_vasched", limitFraction)
		ec.authoredSchedule(doc, n, graph.SockTSPSchedule, n.Name+"_tspsched", limitTemperature)
	}
}

func writeHVACSchedules(ec *Context, doc *idf.Document, zone string, h *graph.Node, d graph.HVACData) {
	if !d.Template {
		doc.Add(idf.SectionSchedules, idf.ConstantSchedule(zone+"_thermocontrol", limitControl, "4"))
		doc.Add(idf.SectionSchedules, idf.Entry("ZoneControl:Thermostat",
			[]string{"Name", "Zone or ZoneList Name", "Control Type Schedule Name",
				"Control 1 Object Type", "Control 1 Name"},
			[]string{zone + "_thermostat", zone, zone + "_thermocontrol",
				"ThermostatSetpoint:DualSetpoint", zone + "_dsp"}))
	}
	ec.slotSchedule(doc, h, graph.SockSchedule, zone+"_hvacsched", limitFraction, "1")
	ec.slotSchedule(doc, h, graph.SockHeatSchedule, zone+"_htspsched", limitTemperature, idf.Num(d.HeatingSetpoint))
	ec.slotSchedule(doc, h, graph.SockCoolSchedule, zone+"_ctspsched", limitTemperature, idf.Num(d.CoolingSetpoint))
}

func writeOccupancySchedules(ec *Context, doc *idf.Document, zone string, o *graph.Node, d graph.OccupancyData) {
	slots := []struct {
		in, suffix, limits string
		def                float64
	}{
		{graph.SockOccSchedule, "_occsched", limitFraction, 1},
		{graph.SockActSchedule, "_actsched", limitAny, d.Watts},
		{graph.SockWESchedule, "_wesched", limitAny, d.WorkEff},
		{graph.SockAVSchedule, "_avsched", limitAny, d.AirVelocity},
		{graph.SockCloSchedule, "_closched", limitAny, d.Clothing},
	}
	for _, s := range slots {
		ec.slotSchedule(doc, o, s.in, zone+s.suffix, s.limits, fmt.Sprintf("%.3f", s.def))
	}
}
