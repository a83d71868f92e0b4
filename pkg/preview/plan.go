// Package preview draws an SVG plan of canonical zone geometry, each face
// filled with the display colour of its construction.
package preview

import (
	"fmt"
	"io"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/construction"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultScale is the number of pixels per metre.
const DefaultScale = 50

const margin = 20

// Palette returns the display colour of a material.
type Palette func(material string) (construction.Color, bool)

// SetPalette colours faces by the constructions in s. Materials without
// a construction or a kind colour are drawn grey.
func SetPalette(s *construction.Set) Palette {
	return func(material string) (construction.Color, bool) {
		c := s.Get(material)
		if c == nil {
			return construction.Color{}, false
		}
		return construction.DisplayColor(c)
	}
}

type planFace struct {
	zone  string
	pts   []v3.Vec
	top   float64
	fill  string
	label string
}

// Plan writes an SVG plan of zones to w, viewed from above. Faces are
// painted bottom up so roofs cover floors.
func Plan(w io.Writer, zones []*canon.Zone, colors Palette, scale float64) error {
	if scale <= 0 {
		scale = DefaultScale
	}
	var faces []planFace
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, z := range zones {
		for i, ref := range z.Faces {
			pts := z.Mesh.FaceVerts(i)
			f := planFace{zone: z.Name, pts: pts, top: math.Inf(-1), fill: "#bbbbbb", label: z.SurfaceName(i)}
			if c, ok := colors(ref.Material); ok {
				f.fill = c.Hex()
			}
			for _, p := range pts {
				f.top = math.Max(f.top, p.Z)
				lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
				hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
			}
			faces = append(faces, f)
		}
	}
	if len(faces) == 0 {
		return fmt.Errorf("preview: no faces to draw")
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].top < faces[j].top })

	px := func(x float64) int { return margin + int(math.Round((x-lo.X)*scale)) }
	py := func(y float64) int { return margin + int(math.Round((hi.Y-y)*scale)) }

	canvas := svg.New(w)
	canvas.Start(px(hi.X)+margin, py(lo.Y)+margin)
	canvas.Rect(0, 0, px(hi.X)+margin, py(lo.Y)+margin, "fill:white")
	for _, f := range faces {
		xs := make([]int, len(f.pts))
		ys := make([]int, len(f.pts))
		for i, p := range f.pts {
			xs[i], ys[i] = px(p.X), py(p.Y)
		}
		canvas.Group(fmt.Sprintf(`class="%s"`, f.zone))
		canvas.Title(f.label)
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:black;stroke-width:1", f.fill))
		canvas.Gend()
	}
	canvas.End()
	return nil
}
