package export

import (
	"time"

	"github.com/chazu/envi/pkg/boundary"
	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/construction"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/network"
	"github.com/chazu/envi/pkg/scene"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Context is the state of one frame's export. It is written by a single
// pass and owned by the frame it was prepared for.
type Context struct {
	Frame         int
	Scene         *scene.Scene
	Params        scene.Params
	Zones         []*canon.Zone
	Constructions *construction.Set
	Network       *graph.Graph
	Rebuild       network.Report

	// Conditions holds the resolved boundary of every building surface.
	Conditions map[string]boundary.Condition
	// FloorArea caches the floor area of each zone for this frame.
	FloorArea      map[string]float64
	TotalFloorArea float64

	Warnings []Warning

	// Set while writing.
	HVACTemplate bool
	AFN          bool
	Generators   []string

	Now time.Time

	fenestration map[string]string // host surface -> fenestration surface
	errs         error
	log          *zap.Logger
	metrics      Metrics
}

func newContext(sc *scene.Scene, frame int, log *zap.Logger, m Metrics) *Context {
	return &Context{
		Frame:        frame,
		Scene:        sc,
		Params:       sc.Params,
		Network:      sc.Network,
		Conditions:   make(map[string]boundary.Condition),
		FloorArea:    make(map[string]float64),
		fenestration: make(map[string]string),
		log:          log.With(zap.Int("frame", frame)),
		metrics:      m,
	}
}

// Warn records a non-fatal finding.
func (c *Context) Warn(kind, subject, message string) {
	c.Warnings = append(c.Warnings, Warning{Kind: kind, Subject: subject, Message: message})
	c.log.Warn(message, zap.String("kind", kind), zap.String("subject", subject))
	c.metrics.Warning(kind)
}

// fail records a finding that aborts the frame once writing completes.
func (c *Context) fail(subject string, sentinel error, message string) {
	err := &ValidationError{Frame: c.Frame, Subject: subject, Err: sentinel, Message: message}
	c.errs = multierr.Append(c.errs, err)
	c.log.Error(err.Error(), zap.String("subject", subject))
	c.metrics.ExportError(errorKind(err))
}

// Err returns every abort finding recorded so far.
func (c *Context) Err() error {
	return c.errs
}

// zoneNodes returns the network nodes of the exported thermal zones, in
// network order.
func (c *Context) zoneNodes() []*graph.Node {
	names := make(map[string]bool)
	for _, z := range c.Zones {
		if z.Kind.Thermal() {
			names[z.Name] = true
		}
	}
	var out []*graph.Node
	for _, n := range c.Network.OfKind(graph.NodeZone, graph.NodeThermalChimney) {
		if zone, _ := n.ZoneName(); names[zone] {
			out = append(out, n)
		}
	}
	return out
}

// zoneNode returns the network node of zone, or nil.
func (c *Context) zoneNode(zone string) *graph.Node {
	for _, n := range c.zoneNodes() {
		if name, _ := n.ZoneName(); name == zone {
			return n
		}
	}
	return nil
}

// upstream returns the node feeding input in of n, or nil.
func (c *Context) upstream(n *graph.Node, in string) *graph.Node {
	if n == nil {
		return nil
	}
	return c.Network.Upstream(n, in)
}
