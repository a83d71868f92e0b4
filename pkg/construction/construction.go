// Package construction resolves each material's construction graph into
// the flat record the exporter writes: kind, boundary, layer stack and the
// optional PV and frame attachments.
package construction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/scene"
	"go.uber.org/zap"
)

var (
	// ErrBadNode is returned when a construction graph holds a node
	// flagged invalid.
	ErrBadNode = graph.ErrBadNode
	// ErrNoConstruction is returned for a material with no construction
	// graph or no active construction node.
	ErrNoConstruction = errors.New("no construction")
)

// WarnNoConstruction is the warning kind for skipped materials.
const WarnNoConstruction = "no-construction"

// Reporter receives non-fatal findings.
type Reporter interface {
	Warn(kind, subject, message string)
}

// Construction is the resolved export record of one material.
type Construction struct {
	Name     string
	Kind     graph.ConKind
	Boundary graph.BoundaryKind
	Layers   []graph.LayerData
	PV       *graph.PVData
	// Frame is set for a detailed frame-and-divider.
	Frame *graph.FrameData
	// FrameArea is the percentage of an opening taken by a simple frame.
	FrameArea float64
	Airflow   bool
}

// Detailed reports whether the construction carries a frame-and-divider
// record.
func (c *Construction) Detailed() bool {
	return c.Frame != nil
}

// Written reports whether the construction gets its own material and
// construction records.
func (c *Construction) Written() bool {
	switch c.Kind {
	case graph.ConNone, graph.ConShading, graph.ConAperture:
		return false
	}
	return true
}

// Resolve validates m's construction graph and resolves its single active
// construction node.
func Resolve(m *scene.Material) (*Construction, error) {
	if m.Graph == nil {
		return nil, fmt.Errorf("construction: material %s: %w", m.Name, ErrNoConstruction)
	}
	g := m.Graph

	result := graph.ValidateAll(g)
	graph.MarkInvalid(g, result)
	if bad := g.Bad(); len(bad) > 0 {
		names := make([]string, len(bad))
		for i, n := range bad {
			names[i] = n.Name
		}
		return nil, fmt.Errorf("construction: material %s: %w: %s", m.Name, ErrBadNode, strings.Join(names, ", "))
	}
	if !result.OK() {
		return nil, fmt.Errorf("construction: material %s: %w: %s", m.Name, ErrBadNode, result.Errors[0].Message)
	}

	var root *graph.Node
	for _, n := range g.OfKind(graph.NodeConstruction) {
		if cd, ok := n.Data.(graph.ConstructionData); ok && cd.Active {
			root = n
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("construction: material %s: no active node: %w", m.Name, ErrNoConstruction)
	}
	cd := root.Data.(graph.ConstructionData)

	c := &Construction{
		Name:      m.Name,
		Kind:      cd.Kind,
		Boundary:  cd.Boundary,
		FrameArea: cd.FrameArea,
		Airflow:   cd.Airflow,
	}

	seen := make(map[graph.NodeID]bool)
	for n := g.Upstream(root, graph.SockOuterLayer); n != nil && !seen[n.ID]; n = g.Upstream(n, graph.SockLayer) {
		seen[n.ID] = true
		if ld, ok := n.Data.(graph.LayerData); ok {
			c.Layers = append(c.Layers, ld)
		}
	}

	if n := g.Upstream(root, graph.SockPV); n != nil {
		if pv, ok := n.Data.(graph.PVData); ok {
			c.PV = &pv
		}
	}

	if cd.Kind.Fenestration() {
		if n := g.Upstream(root, graph.SockFrame); n != nil {
			if fd, ok := n.Data.(graph.FrameData); ok {
				if fd.Class == graph.FrameDetailed {
					c.Frame = &fd
				} else {
					c.FrameArea = fd.AreaPercent
				}
			}
		}
	}

	return c, nil
}

// Set holds the constructions resolved for one frame, keyed by material.
type Set struct {
	byName map[string]*Construction
	order  []string
	log    *zap.Logger
	report Reporter
}

// NewSet returns an empty set.
func NewSet(log *zap.Logger, report Reporter) *Set {
	if log == nil {
		log = zap.NewNop()
	}
	return &Set{byName: make(map[string]*Construction), log: log, report: report}
}

// Load resolves every material referenced by an object of s, in material
// registration order. Materials without a construction are warned about
// and skipped; a bad node aborts.
func (s *Set) Load(sc *scene.Scene) error {
	used := make(map[string]bool)
	for _, col := range sc.Collections {
		for _, obj := range col.Objects {
			for _, name := range obj.Slots {
				used[name] = true
			}
		}
	}

	for _, m := range sc.OrderedMaterials() {
		if !used[m.Name] {
			continue
		}
		c, err := Resolve(m)
		if errors.Is(err, ErrNoConstruction) {
			msg := fmt.Sprintf("the %s material has no node tree; this material has not been exported", m.Name)
			s.log.Warn(msg, zap.String("material", m.Name))
			if s.report != nil {
				s.report.Warn(WarnNoConstruction, m.Name, msg)
			}
			continue
		}
		if err != nil {
			return err
		}
		s.Add(c)
	}
	return nil
}

// Add registers c under its name.
func (s *Set) Add(c *Construction) {
	if _, ok := s.byName[c.Name]; !ok {
		s.order = append(s.order, c.Name)
	}
	s.byName[c.Name] = c
}

// Get returns the construction of material, or nil.
func (s *Set) Get(material string) *Construction {
	return s.byName[material]
}

// Kind reports the construction kind of material; ok is false when the
// material is not exported.
func (s *Set) Kind(material string) (graph.ConKind, bool) {
	c := s.byName[material]
	if c == nil {
		return graph.ConNone, false
	}
	return c.Kind, true
}

// Ordered returns the constructions in load order.
func (s *Set) Ordered() []*Construction {
	out := make([]*Construction, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// HasPV reports whether any construction carries a PV generator.
func (s *Set) HasPV() bool {
	for _, c := range s.byName {
		if c.PV != nil {
			return true
		}
	}
	return false
}
