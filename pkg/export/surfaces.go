package export

import (
	"fmt"
	"strings"

	"github.com/chazu/envi/pkg/boundary"
	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/construction"
	"github.com/chazu/envi/pkg/geom"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

var surfaceFields = []string{"Name", "Surface Type", "Construction Name", "Zone Name",
	"Outside Boundary Condition", "Outside Boundary Condition Object", "Sun Exposure",
	"Wind Exposure", "View Factor to Ground", "Number of Vertices"}

var fenestrationFields = []string{"Name", "Surface Type", "Construction Name", "Building Surface Name",
	"Outside Boundary Condition Object", "View Factor to Ground", "Frame and Divider Name",
	"Multiplier", "Number of Vertices"}

var shadingFields = []string{"Name", "Transmittance Schedule Name", "Number of Vertices"}

// surfaceText collects the surface section in its three parts. PV records
// follow the shading surfaces.
type surfaceText struct {
	opaque, fenestration, shading, pv strings.Builder
}

// writeSurfaces writes every face of every zone: building surfaces first,
// then fenestration, then shading.
func (e *Exporter) writeSurfaces(ec *Context, doc *idf.Document) {
	e.resolveBoundaries(ec)

	var out surfaceText
	for _, z := range ec.Zones {
		for i, f := range z.Faces {
			c := ec.Constructions.Get(f.Material)
			name := z.SurfaceName(i)
			if c == nil {
				ec.fail(name, ErrBadConstruction, fmt.Sprintf("material %s has no resolved construction", f.Material))
				continue
			}
			writeFace(ec, &out, z, i, c)
		}
	}
	for _, b := range []*strings.Builder{&out.opaque, &out.fenestration, &out.shading, &out.pv} {
		doc.Add(idf.SectionSurfaces, b.String())
	}
}

func writeFace(ec *Context, out *surfaceText, z *canon.Zone, i int, c *construction.Construction) {
	name := z.SurfaceName(i)
	pts := z.Mesh.FaceVerts(i)

	if !z.Kind.Thermal() {
		if c.Kind.Fenestration() {
			ec.fail(name, ErrMissingHost, fmt.Sprintf("%s on shading object %s", strings.ToLower(c.Kind.String()), z.Faces[i].Object))
			return
		}
		out.shading.WriteString(shadingRecord("Shading:Site:Detailed", name, pts))
		ec.metrics.SurfaceEmitted("site-shading")
		writePV(ec, &out.pv, name, c, pts)
		return
	}

	switch {
	case c.Kind.Opaque():
		out.opaque.WriteString(buildingSurface(ec, name, surfaceType(c.Kind), c.Name, z.Name, pts))
		ec.metrics.SurfaceEmitted(c.Kind.String())
		writePV(ec, &out.pv, name, c, pts)

	case c.Kind.Fenestration():
		if len(pts) > 4 {
			ec.fail(name, ErrFenestrationVertices, fmt.Sprintf("%s in %s has %d vertices", strings.ToLower(c.Kind.String()), z.Faces[i].Object, len(pts)))
			return
		}
		out.opaque.WriteString(buildingSurface(ec, name, "Wall", c.Name+"-frame", z.Name, pts))

		win := boundary.Prefix(c.Kind) + name
		ec.fenestration[name] = win
		fad := ""
		if c.Detailed() {
			fad = c.Name + "-fad"
		}
		inner := boundary.FrameVertices(pts, c.Frame, c.FrameArea)
		values := idf.Values(win, c.Kind.String(), c.Name, name,
			boundary.FenestrationObject(c.Kind, ec.Conditions[name].Object), "autocalculate", fad, "1", len(inner))
		out.fenestration.WriteString(idf.Entry("FenestrationSurface:Detailed",
			append(append([]string(nil), fenestrationFields...), idf.VertexFields(len(inner))...),
			append(values, vertices(inner, idf.Vertex)...)))
		ec.metrics.SurfaceEmitted(c.Kind.String())

	case c.Kind == graph.ConShading:
		out.shading.WriteString(shadingRecord("Shading:Building:Detailed", name, pts))
		ec.metrics.SurfaceEmitted(c.Kind.String())
		writePV(ec, &out.pv, name, c, pts)
	}
}

// surfaceType maps a construction kind to a building surface type.
func surfaceType(k graph.ConKind) string {
	if k == graph.ConPartition {
		return "Wall"
	}
	return k.String()
}

func buildingSurface(ec *Context, name, kind, con, zone string, pts []v3.Vec) string {
	cond := ec.Conditions[name]
	values := idf.Values(name, kind, con, zone, cond.Kind.String(), cond.Object,
		cond.SunExposure, cond.WindExposure, "autocalculate", len(pts))
	return idf.Entry("BuildingSurface:Detailed",
		append(append([]string(nil), surfaceFields...), idf.VertexFields(len(pts))...),
		append(values, vertices(pts, idf.Vertex)...))
}

func shadingRecord(kind, name string, pts []v3.Vec) string {
	values := idf.Values(name, "", len(pts))
	return idf.Entry(kind,
		append(append([]string(nil), shadingFields...), idf.VertexFields(len(pts))...),
		append(values, vertices(pts, idf.ShadingVertex)...))
}

func vertices(pts []v3.Vec, format func(v3.Vec) string) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = format(p)
	}
	return out
}

// writePV writes the generator and performance records of a PV surface
// and registers the generator with the load center.
func writePV(ec *Context, b *strings.Builder, surface string, c *construction.Construction, pts []v3.Vec) {
	if c.PV == nil {
		return
	}
	pv := c.PV
	mode := pv.HeatTransfer
	if mode == "" {
		mode = "Decoupled"
	}
	gen := surface + "-pv"
	b.WriteString(idf.Entry("Generator:Photovoltaic",
		[]string{"Name", "Surface Name", "Photovoltaic Performance Object Type", "Module Performance Name",
			"Heat Transfer Integration Mode", "Number of Series Strings in Parallel", "Number of Modules in Series"},
		idf.Values(gen, surface, "PhotovoltaicPerformance:Simple", gen+"-perf", mode, 1, 1)))
	b.WriteString(idf.Entry("PhotovoltaicPerformance:Simple",
		[]string{"Name", "Fraction of Surface Area with Active Solar Cells", "Conversion Efficiency Input Mode",
			"Value for Cell Efficiency if Fixed", "Efficiency Schedule Name"},
		idf.Values(gen+"-perf", pv.Fraction, "Fixed", pv.Efficiency, "")))
	ec.Generators = append(ec.Generators, gen)
	ec.log.Debug("pv generator attached", zap.String("surface", surface), zap.Float64("area", geom.Area(pts)))
}
