// Package network keeps the zone/airflow network graph in step with the
// zone geometry. Every rebuild snapshots the surface links, drops nodes of
// zones that went away, creates or re-syncs one node per zone and then
// restores the links whose sockets still exist.
package network

import (
	"fmt"

	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/construction"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/scene"
	"go.uber.org/zap"
)

// State classifies a node against the current zone set.
type State int

const (
	Absent State = iota
	PresentValid
	PresentStale // bound zone gone or changed type
	PresentBad   // flagged invalid
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case PresentValid:
		return "present-valid"
	case PresentStale:
		return "present-stale"
	case PresentBad:
		return "present-bad"
	default:
		return "unknown"
	}
}

// Zone is what the network needs to know about one thermal zone.
type Zone struct {
	Name    string
	Chimney bool
	Volume  float64
	// Sockets are the surface sockets the zone node must carry, in face
	// order. Each exists as both an input and an output.
	Sockets []Socket
}

// Socket is a surface socket name and kind.
type Socket struct {
	Name string
	Kind graph.SocketKind
}

// Zones derives the network view of the thermal zones. Zone-bounded faces
// get a boundary socket, airflow faces a simple-flow socket or, for
// windows and doors, a detailed-flow socket.
func Zones(zones []*canon.Zone, cons *construction.Set) []Zone {
	var out []Zone
	for _, z := range zones {
		if !z.Kind.Thermal() {
			continue
		}
		nz := Zone{Name: z.Name, Chimney: z.Kind == scene.ObjectChimney, Volume: z.Volume}
		for _, f := range z.Faces {
			c := cons.Get(f.Material)
			if c == nil {
				continue
			}
			if c.Boundary == graph.BoundZone {
				nz.Sockets = append(nz.Sockets, Socket{graph.SurfaceSocketName(f.Material, f.ID, graph.SocketBoundary), graph.SocketBoundary})
			}
			if c.Airflow {
				kind := graph.SocketSimpleFlow
				if c.Kind.Fenestration() {
					kind = graph.SocketDetailedFlow
				}
				nz.Sockets = append(nz.Sockets, Socket{graph.SurfaceSocketName(f.Material, f.ID, kind), kind})
			}
		}
		out = append(out, nz)
	}
	return out
}

// StateOf classifies n against zones.
func StateOf(n *graph.Node, zones []Zone) State {
	if n == nil {
		return Absent
	}
	if n.Bad {
		return PresentBad
	}
	if !n.Kind.ZoneBound() {
		return PresentValid
	}
	name, _ := n.ZoneName()
	for _, z := range zones {
		if z.Name == name {
			if z.Chimney != (n.Kind == graph.NodeThermalChimney) {
				return PresentStale
			}
			return PresentValid
		}
	}
	return PresentStale
}

// Report summarizes one rebuild.
type Report struct {
	Created  []string
	Updated  []string
	Removed  []string
	Restored int
	Dropped  int
}

// Builder rebuilds network graphs.
type Builder struct {
	log *zap.Logger
}

// NewBuilder returns a Builder. A nil logger disables logging.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log}
}

// AmbientName is the name of the airflow simulation control node.
const AmbientName = "ACon"

// Rebuild reconciles g with zones and then applies the named links.
func (b *Builder) Rebuild(g *graph.Graph, zones []Zone, links []scene.Link) Report {
	var rep Report

	snap := Capture(g)

	for _, n := range g.OfKind(graph.NodeZone, graph.NodeThermalChimney) {
		if StateOf(n, zones) == PresentStale {
			g.RemoveNode(n.ID)
			rep.Removed = append(rep.Removed, n.Name)
			b.log.Info("stale zone node removed", zap.String("node", n.Name))
		}
	}

	for _, z := range zones {
		n := zoneNode(g, z.Name)
		if n == nil {
			n = newZoneNode(z)
			g.AddNode(n)
			rep.Created = append(rep.Created, n.Name)
		} else {
			updateZoneNode(n, z)
			rep.Updated = append(rep.Updated, n.Name)
		}
		syncSockets(n, z)
	}

	if len(g.OfKind(graph.NodeAmbientConnection)) == 0 {
		g.AddNode(graph.NewNode(graph.NodeAmbientConnection, AmbientName, DefaultAmbient()))
	}

	rep.Restored, rep.Dropped = snap.Restore(g, b.log)

	for _, l := range links {
		if err := applyLink(g, l); err != nil {
			rep.Dropped++
			b.log.Info("link dropped", zap.Error(err))
		}
	}

	b.log.Debug("network rebuilt",
		zap.Int("created", len(rep.Created)),
		zap.Int("updated", len(rep.Updated)),
		zap.Int("removed", len(rep.Removed)),
		zap.Int("restored", rep.Restored),
		zap.Int("dropped", rep.Dropped))
	return rep
}

// DefaultAmbient returns the airflow simulation control created when the
// network has none.
func DefaultAmbient() graph.AmbientConnectionData {
	return graph.AmbientConnectionData{
		Control:      "MultizoneWithoutDistribution",
		BuildingType: "LowRise",
		AspectRatio:  1,
	}
}

func zoneNode(g *graph.Graph, zone string) *graph.Node {
	for _, n := range g.OfKind(graph.NodeZone, graph.NodeThermalChimney) {
		if name, _ := n.ZoneName(); name == zone {
			return n
		}
	}
	return nil
}

func newZoneNode(z Zone) *graph.Node {
	if z.Chimney {
		return graph.NewNode(graph.NodeThermalChimney, z.Name, graph.ThermalChimneyData{Zone: z.Name, Volume: z.Volume})
	}
	return graph.NewNode(graph.NodeZone, z.Name, graph.ZoneData{Zone: z.Name, Volume: z.Volume, Multiplier: 1})
}

func updateZoneNode(n *graph.Node, z Zone) {
	switch d := n.Data.(type) {
	case graph.ZoneData:
		d.Volume = z.Volume
		n.Data = d
	case graph.ThermalChimneyData:
		d.Volume = z.Volume
		n.Data = d
	}
}

// syncSockets makes the surface sockets of n exactly those of z, keeping
// existing socket values so their identifiers survive.
func syncSockets(n *graph.Node, z Zone) {
	n.Inputs = syncSide(n.Inputs, z, false)
	n.Outputs = syncSide(n.Outputs, z, true)
}

func syncSide(socks []*graph.Socket, z Zone, output bool) []*graph.Socket {
	existing := make(map[string]*graph.Socket)
	var kept []*graph.Socket
	for _, s := range socks {
		if s.Kind.Removable() {
			existing[s.Name] = s
			continue
		}
		kept = append(kept, s)
	}
	for _, want := range z.Sockets {
		if s, ok := existing[want.Name]; ok && s.Kind == want.Kind {
			kept = append(kept, s)
			continue
		}
		kept = append(kept, &graph.Socket{Name: want.Name, Kind: want.Kind, UID: graph.SurfaceSocketUID(z.Name, want.Name, output)})
	}
	return kept
}

func applyLink(g *graph.Graph, l scene.Link) error {
	from, to := g.Lookup(l.From), g.Lookup(l.To)
	if from == nil || to == nil {
		return fmt.Errorf("network: link %s.%s -> %s.%s: missing node", l.From, l.FromSocket, l.To, l.ToSocket)
	}
	for _, e := range g.LinksInto(to.ID, l.ToSocket) {
		if e.From == from.ID && e.FromSocket == l.FromSocket {
			return nil
		}
	}
	if err := g.Connect(from, l.FromSocket, to, l.ToSocket); err != nil {
		return fmt.Errorf("network: link %s.%s -> %s.%s: %w", l.From, l.FromSocket, l.To, l.ToSocket, err)
	}
	return nil
}
