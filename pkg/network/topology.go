package network

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/envi/pkg/graph"
)

// CheckExportable validates g and fails when any node is, or has just been
// flagged, bad.
func CheckExportable(g *graph.Graph) error {
	result := graph.ValidateAll(g)
	graph.MarkInvalid(g, result)
	if bad := g.Bad(); len(bad) > 0 {
		names := make([]string, len(bad))
		for i, n := range bad {
			names[i] = n.Name
		}
		return fmt.Errorf("network: %w: %s", graph.ErrBadNode, strings.Join(names, ", "))
	}
	if !result.OK() {
		return fmt.Errorf("network: %w: %s", graph.ErrBadNode, result.Errors[0].Message)
	}
	return nil
}

// SurfaceName returns the exported surface name a zone node socket stands
// for.
func SurfaceName(n *graph.Node, socket string) (string, bool) {
	zone, ok := n.ZoneName()
	if !ok {
		return "", false
	}
	_, id, _, ok := graph.ParseSurfaceSocket(socket)
	if !ok {
		return "", false
	}
	return zone + "_" + strconv.Itoa(id), true
}

// Pair is two surfaces joined by a boundary link.
type Pair struct {
	A, B string
}

// BoundaryPairs returns the surface pairs drawn as boundary links between
// zone nodes, in link order.
func BoundaryPairs(g *graph.Graph) []Pair {
	var out []Pair
	for _, l := range g.Links {
		from, to := g.Get(l.From), g.Get(l.To)
		if from == nil || to == nil {
			continue
		}
		if s := from.Output(l.FromSocket); s == nil || s.Kind != graph.SocketBoundary {
			continue
		}
		a, okA := SurfaceName(from, l.FromSocket)
		b, okB := SurfaceName(to, l.ToSocket)
		if okA && okB {
			out = append(out, Pair{a, b})
		}
	}
	return out
}

// FlowSurface is one surface served by an airflow component.
type FlowSurface struct {
	Surface  string
	External string // external node on the far side, if any
}

// FlowSurfaces returns the surfaces feeding flow node n through its first
// node input, with the external node its second node leads to.
func FlowSurfaces(g *graph.Graph, n *graph.Node) []FlowSurface {
	var ext string
	for _, l := range g.LinksFrom(n.ID, graph.SockNode2) {
		if to := g.Get(l.To); to != nil && to.Kind == graph.NodeExternal {
			ext = to.Name
			break
		}
	}
	var out []FlowSurface
	for _, l := range g.LinksInto(n.ID, graph.SockNode1) {
		from := g.Get(l.From)
		if from == nil {
			continue
		}
		if name, ok := SurfaceName(from, l.FromSocket); ok {
			out = append(out, FlowSurface{Surface: name, External: ext})
		}
	}
	return out
}
