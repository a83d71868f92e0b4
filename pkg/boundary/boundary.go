// Package boundary decides what lies beyond every exported surface:
// outdoors, the ground, an adiabatic mirror or a partner surface in the
// same or another zone. Partner surfaces always reference each other.
package boundary

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/envi/pkg/geom"
	"github.com/chazu/envi/pkg/graph"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Kind is an outside boundary condition.
type Kind int

const (
	Outdoors Kind = iota
	Ground
	OtherSurface
	Adiabatic
)

func (k Kind) String() string {
	switch k {
	case Outdoors:
		return "Outdoors"
	case Ground:
		return "Ground"
	case OtherSurface:
		return "Surface"
	case Adiabatic:
		return "Adiabatic"
	default:
		return "unknown"
	}
}

// Exposure values.
const (
	SunExposed  = "SunExposed"
	NoSun       = "NoSun"
	WindExposed = "WindExposed"
	NoWind      = "NoWind"
)

// Warning kinds.
const (
	WarnAmbiguous = "ambiguous-boundary"
	WarnNoPartner = "no-partner"
)

var (
	ErrUnknownSurface = errors.New("unknown surface")
	ErrAlreadyPaired  = errors.New("surface already paired")
)

// Condition is the resolved boundary of one surface.
type Condition struct {
	Kind         Kind
	Object       string // partner surface name when Kind is Surface
	SunExposure  string
	WindExposure string
}

// Reporter receives non-fatal findings.
type Reporter interface {
	Warn(kind, subject, message string)
}

// Surface is a candidate for boundary resolution.
type Surface struct {
	Name     string
	Zone     string
	Boundary graph.BoundaryKind
	Points   []v3.Vec // world space
}

// Resolver pairs surfaces. Explicit pairs are honoured first; the rest
// are matched geometrically in the order surfaces were added.
type Resolver struct {
	tol      float64
	surfaces []*Surface
	byName   map[string]*Surface
	pairs    map[string]string
	log      *zap.Logger
	report   Reporter
}

// NewResolver returns a resolver matching vertices within tol.
func NewResolver(tol float64, log *zap.Logger, report Reporter) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		tol:    tol,
		byName: make(map[string]*Surface),
		pairs:  make(map[string]string),
		log:    log,
		report: report,
	}
}

// Add registers s. A later surface with the same name replaces it.
func (r *Resolver) Add(s Surface) {
	if old, ok := r.byName[s.Name]; ok {
		*old = s
		return
	}
	sp := &s
	r.surfaces = append(r.surfaces, sp)
	r.byName[s.Name] = sp
}

// Pair binds a and b to each other regardless of geometry.
func (r *Resolver) Pair(a, b string) error {
	for _, name := range []string{a, b} {
		if r.byName[name] == nil {
			return fmt.Errorf("boundary: pair %s/%s: %w: %s", a, b, ErrUnknownSurface, name)
		}
	}
	if p, ok := r.pairs[a]; ok && p != b {
		return fmt.Errorf("boundary: pair %s/%s: %w: %s bounds %s", a, b, ErrAlreadyPaired, a, p)
	}
	if p, ok := r.pairs[b]; ok && p != a {
		return fmt.Errorf("boundary: pair %s/%s: %w: %s bounds %s", a, b, ErrAlreadyPaired, b, p)
	}
	r.pairs[a] = b
	r.pairs[b] = a
	return nil
}

// Resolve returns the condition of every added surface, keyed by name.
func (r *Resolver) Resolve() map[string]Condition {
	r.match()

	out := make(map[string]Condition, len(r.surfaces))
	for _, s := range r.surfaces {
		if p, ok := r.pairs[s.Name]; ok {
			out[s.Name] = Condition{Kind: OtherSurface, Object: p, SunExposure: NoSun, WindExposure: NoWind}
			continue
		}
		switch s.Boundary {
		case graph.BoundGround:
			out[s.Name] = Condition{Kind: Ground, SunExposure: NoSun, WindExposure: NoWind}
		case graph.BoundAdiabatic:
			out[s.Name] = Condition{Kind: Adiabatic, SunExposure: NoSun, WindExposure: NoWind}
		case graph.BoundZone:
			r.warn(WarnNoPartner, s.Name, fmt.Sprintf("surface %s has a zone boundary but no partner surface; written as adiabatic", s.Name))
			out[s.Name] = Condition{Kind: Adiabatic, SunExposure: NoSun, WindExposure: NoWind}
		default:
			out[s.Name] = Condition{Kind: Outdoors, SunExposure: SunExposed, WindExposure: WindExposed}
		}
	}
	return out
}

func (r *Resolver) warn(kind, subject, message string) {
	r.log.Warn(message, zap.String("kind", kind), zap.String("surface", subject))
	if r.report != nil {
		r.report.Warn(kind, subject, message)
	}
}

// match pairs every unpaired external or zone surface with the first
// unpaired candidate that covers the same vertices facing the other way.
func (r *Resolver) match() {
	for i, s := range r.surfaces {
		if _, ok := r.pairs[s.Name]; ok || !matchable(s) {
			continue
		}
		var found []*Surface
		for _, o := range r.surfaces[i+1:] {
			if _, ok := r.pairs[o.Name]; ok || !matchable(o) {
				continue
			}
			if Adjacent(s.Points, o.Points, r.tol) {
				found = append(found, o)
			}
		}
		if len(found) == 0 {
			continue
		}
		if len(found) > 1 {
			r.warn(WarnAmbiguous, s.Name, fmt.Sprintf("surface %s matches %d surfaces; paired with %s", s.Name, len(found), found[0].Name))
		}
		r.pairs[s.Name] = found[0].Name
		r.pairs[found[0].Name] = s.Name
		r.log.Debug("surfaces paired", zap.String("surface", s.Name), zap.String("partner", found[0].Name))
	}
}

func matchable(s *Surface) bool {
	return s.Boundary == graph.BoundExternal || s.Boundary == graph.BoundZone
}

// Adjacent reports whether polygons a and b occupy the same place with
// opposing orientation: every vertex of one lies within tol of a vertex of
// the other and the normals point apart.
func Adjacent(a, b []v3.Vec, tol float64) bool {
	if len(a) != len(b) || len(a) < 3 {
		return false
	}
	if geom.Centroid(a).Sub(geom.Centroid(b)).Length() > tol {
		return false
	}
	if geom.Normal(a).Dot(geom.Normal(b)) > -1+1e-3 {
		return false
	}
	used := make([]bool, len(b))
	for _, p := range a {
		hit := -1
		for j, q := range b {
			if !used[j] && p.Sub(q).Length() <= tol {
				hit = j
				break
			}
		}
		if hit < 0 {
			return false
		}
		used[hit] = true
	}
	return true
}

// ---------------------------------------------------------------------------
// Fenestration
// ---------------------------------------------------------------------------

// Prefix returns the name prefix of a fenestration surface.
func Prefix(kind graph.ConKind) string {
	if kind == graph.ConDoor {
		return "door-"
	}
	return "win-"
}

// FenestrationObject returns the boundary object of a fenestration surface
// whose host has boundary object obco. It is empty when obco is.
func FenestrationObject(kind graph.ConKind, obco string) string {
	if obco == "" {
		return ""
	}
	return Prefix(kind) + obco
}

// FrameVertices insets an opening by its frame. A detailed frame moves
// every vertex towards the centroid by the frame width along the face's U
// and V axes; otherwise the opening is scaled about its centroid so the
// frame takes areaPercent of it.
func FrameVertices(pts []v3.Vec, frame *graph.FrameData, areaPercent float64) []v3.Vec {
	if frame != nil && frame.Class == graph.FrameDetailed {
		return DetailedFrame(pts, frame.Width)
	}
	return SimpleFrame(pts, areaPercent)
}

// SimpleFrame scales pts about their centroid by 1 - areaPercent/100.
func SimpleFrame(pts []v3.Vec, areaPercent float64) []v3.Vec {
	c := geom.Centroid(pts)
	f := 1 - areaPercent*0.01
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[i] = c.Add(p.Sub(c).MulScalar(f))
	}
	return out
}

// DetailedFrame offsets pts towards their centroid by width plus a
// millimetre of clearance on each in-plane axis.
func DetailedFrame(pts []v3.Vec, width float64) []v3.Vec {
	c := geom.Centroid(pts)
	u, v := geom.Basis(geom.Normal(pts))
	inset := 0.001 + width
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		d := p.Sub(c)
		du, dv := d.Dot(u), d.Dot(v)
		du -= towards(du, inset)
		dv -= towards(dv, inset)
		// out-of-plane remainder
		w := d.Sub(u.MulScalar(d.Dot(u))).Sub(v.MulScalar(d.Dot(v)))
		out[i] = c.Add(u.MulScalar(du)).Add(v.MulScalar(dv)).Add(w)
	}
	return out
}

func towards(d, inset float64) float64 {
	if math.Abs(d) < 0.0001 {
		return 0
	}
	return math.Copysign(inset, d)
}
