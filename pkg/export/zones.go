package export

import (
	"fmt"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
)

// writeZones writes one Zone record per thermal zone followed by the
// global geometry rules.
func writeZones(ec *Context, doc *idf.Document) {
	for _, z := range ec.Zones {
		if !z.Kind.Thermal() {
			continue
		}
		mult, ica, oca := 1, "", ""
		if n := ec.zoneNode(z.Name); n != nil {
			if d, ok := n.Data.(graph.ZoneData); ok {
				ica, oca = d.Inside.String(), d.Outside.String()
				if d.Multiplier > 0 {
					mult = d.Multiplier
				}
			}
		}
		doc.Add(idf.SectionZones, idf.Entry("Zone",
			[]string{"Name", "Direction of Relative North (deg)", "X Origin (m)", "Y Origin (m)", "Z Origin (m)",
				"Type", "Multiplier", "Ceiling Height (m)", "Volume (m3)", "Floor Area (m2)",
				"Zone Inside Convection Algorithm", "Zone Outside Convection Algorithm", "Part of Total Floor Area"},
			idf.Values(z.Name, 0, 0, 0, 0, 1, mult, "autocalculate", fmt.Sprintf("%.1f", z.Volume),
				"autocalculate", ica, oca, "Yes")))
	}

	doc.Add(idf.SectionGeometryRules, idf.Entry("GlobalGeometryRules",
		[]string{"Starting Vertex Position", "Vertex Entry Direction", "Coordinate System"},
		[]string{"UpperRightCorner", "Counterclockwise", "World"}))
}
