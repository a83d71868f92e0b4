package export

import (
	"fmt"

	"github.com/chazu/envi/pkg/construction"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
)

// frameResistance is the thermal resistance of a frame with no detailed
// conductance, m2-K/W.
const frameResistance = 0.2

// writeMaterials writes the layer, construction and frame records of every
// construction in use.
func writeMaterials(ec *Context, doc *idf.Document) {
	for _, c := range ec.Constructions.Ordered() {
		if !c.Written() {
			continue
		}
		names := make([]string, len(c.Layers))
		for i, l := range c.Layers {
			names[i] = fmt.Sprintf("%s-layer-%d", c.Name, i)
			doc.Add(idf.SectionMaterials, layerRecord(names[i], l))
		}
		doc.Add(idf.SectionMaterials, constructionRecord(c.Name, names))

		if c.Kind.Fenestration() {
			writeFrame(doc, c)
		}
	}
}

func constructionRecord(name string, layers []string) string {
	fields := []string{"Name"}
	values := []string{name}
	for i, l := range layers {
		if i == 0 {
			fields = append(fields, "Outside Layer")
		} else {
			fields = append(fields, fmt.Sprintf("Layer %d", i+1))
		}
		values = append(values, l)
	}
	return idf.Entry("Construction", fields, values)
}

func layerRecord(name string, l graph.LayerData) string {
	rough := l.Roughness
	if rough == "" {
		rough = "MediumRough"
	}
	switch l.Class {
	case graph.LayerNoMass:
		return idf.Entry("Material:NoMass",
			[]string{"Name", "Roughness", "Thermal Resistance (m2-K/W)", "Thermal Absorptance",
				"Solar Absorptance", "Visible Absorptance"},
			idf.Values(name, rough, l.Resistance, l.ThermalAbs, l.SolarAbs, l.VisibleAbs))
	case graph.LayerAirGap:
		return idf.Entry("Material:AirGap",
			[]string{"Name", "Thermal Resistance (m2-K/W)"},
			idf.Values(name, l.Resistance))
	case graph.LayerGlazing:
		return idf.Entry("WindowMaterial:Glazing",
			[]string{"Name", "Optical Data Type", "Window Glass Spectral Data Set Name", "Thickness (m)",
				"Solar Transmittance at Normal Incidence", "Front Side Solar Reflectance at Normal Incidence",
				"Back Side Solar Reflectance at Normal Incidence", "Visible Transmittance at Normal Incidence",
				"Front Side Visible Reflectance at Normal Incidence", "Back Side Visible Reflectance at Normal Incidence",
				"Infrared Transmittance at Normal Incidence", "Front Side Infrared Hemispherical Emissivity",
				"Back Side Infrared Hemispherical Emissivity", "Conductivity (W/m-K)"},
			idf.Values(name, "SpectralAverage", "", l.Thickness, l.SolarTrans, l.SolarRefl, l.SolarRefl,
				l.VisTrans, l.VisRefl, l.VisRefl, l.IRTrans, l.Emissivity, l.Emissivity, l.Conductivity))
	case graph.LayerGas:
		return idf.Entry("WindowMaterial:Gas",
			[]string{"Name", "Gas Type", "Thickness (m)"},
			idf.Values(name, l.Gas, l.Thickness))
	default:
		return idf.Entry("Material",
			[]string{"Name", "Roughness", "Thickness (m)", "Conductivity (W/m-K)", "Density (kg/m3)",
				"Specific Heat (J/kg-K)", "Thermal Absorptance", "Solar Absorptance", "Visible Absorptance"},
			idf.Values(name, rough, l.Thickness, l.Conductivity, l.Density, l.SpecificHeat,
				l.ThermalAbs, l.SolarAbs, l.VisibleAbs))
	}
}

// writeFrame writes the construction of the wall hosting an opening and,
// for a detailed frame, its frame-and-divider record.
func writeFrame(doc *idf.Document, c *construction.Construction) {
	r := frameResistance
	if c.Frame != nil && c.Frame.Conductance > 0 {
		r = 1 / c.Frame.Conductance
	}
	layer := c.Name + "-frame-layer"
	doc.Add(idf.SectionMaterials, idf.Entry("Material:NoMass",
		[]string{"Name", "Roughness", "Thermal Resistance (m2-K/W)", "Thermal Absorptance",
			"Solar Absorptance", "Visible Absorptance"},
		idf.Values(layer, "Rough", r, 0.9, 0.7, 0.7)))
	doc.Add(idf.SectionMaterials, constructionRecord(c.Name+"-frame", []string{layer}))

	if !c.Detailed() {
		return
	}
	f := c.Frame
	doc.Add(idf.SectionMaterials, idf.Entry("WindowProperty:FrameAndDivider",
		[]string{"Name", "Frame Width (m)", "Frame Outside Projection (m)", "Frame Inside Projection (m)",
			"Frame Conductance (W/m2-K)", "Ratio of Frame-Edge Glass Conductance to Center-Of-Glass Conductance",
			"Frame Solar Absorptance", "Frame Visible Absorptance", "Frame Thermal Hemispherical Emissivity",
			"Divider Type", "Divider Width (m)", "Number of Horizontal Dividers", "Number of Vertical Dividers",
			"Divider Outside Projection (m)", "Divider Inside Projection (m)", "Divider Conductance (W/m2-K)",
			"Ratio of Divider-Edge Glass Conductance to Center-Of-Glass Conductance",
			"Divider Solar Absorptance", "Divider Visible Absorptance", "Divider Thermal Hemispherical Emissivity"},
		idf.Values(c.Name+"-fad", f.Width, f.OutsideProjection, f.InsideProjection, f.Conductance, 1.0,
			f.SolarAbs, f.VisibleAbs, f.Emissivity, f.DividerType, f.DividerWidth, f.HorizontalDividers,
			f.VerticalDividers, 0.0, 0.0, f.DividerConductance, 1.0, f.SolarAbs, f.VisibleAbs, f.Emissivity)))
}
