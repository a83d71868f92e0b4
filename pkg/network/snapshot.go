package network

import (
	"github.com/chazu/envi/pkg/graph"
	"go.uber.org/zap"
)

// Endpoint addresses a socket by its identifier. Node is kept for logging.
type Endpoint struct {
	Node string
	UID  string
}

// SavedLink is a captured link between two removable sockets.
type SavedLink struct {
	From Endpoint
	To   Endpoint
	Kind graph.SocketKind
}

// Snapshot holds the removable links of a graph.
type Snapshot struct {
	Links []SavedLink
}

// Capture records every link leaving a removable socket and removes it
// from g.
func Capture(g *graph.Graph) Snapshot {
	var snap Snapshot
	kept := g.Links[:0]
	for _, l := range g.Links {
		from, to := g.Get(l.From), g.Get(l.To)
		var src, dst *graph.Socket
		if from != nil {
			src = from.Output(l.FromSocket)
		}
		if to != nil {
			dst = to.Input(l.ToSocket)
		}
		if src == nil || dst == nil || !src.Kind.Removable() {
			kept = append(kept, l)
			continue
		}
		snap.Links = append(snap.Links, SavedLink{
			From: Endpoint{Node: from.Name, UID: src.UID},
			To:   Endpoint{Node: to.Name, UID: dst.UID},
			Kind: src.Kind,
		})
	}
	if len(snap.Links) > 0 {
		g.Links = kept
		g.Version++
	}
	return snap
}

type socketRef struct {
	node *graph.Node
	sock *graph.Socket
}

// Restore reconnects every saved link whose two socket identifiers are
// found on g with the saved kind. Links that cannot be matched are logged
// and dropped.
func (s Snapshot) Restore(g *graph.Graph, log *zap.Logger) (restored, dropped int) {
	if log == nil {
		log = zap.NewNop()
	}
	outs := make(map[string]socketRef)
	ins := make(map[string]socketRef)
	for _, n := range g.Ordered() {
		for _, o := range n.Outputs {
			outs[o.UID] = socketRef{n, o}
		}
		for _, i := range n.Inputs {
			ins[i.UID] = socketRef{n, i}
		}
	}

	for _, l := range s.Links {
		src, okSrc := outs[l.From.UID]
		dst, okDst := ins[l.To.UID]
		if !okSrc || !okDst || src.sock.Kind != l.Kind || dst.sock.Kind != l.Kind {
			dropped++
			log.Info("link dropped on rebuild",
				zap.String("from", l.From.Node),
				zap.String("to", l.To.Node),
				zap.Stringer("kind", l.Kind))
			continue
		}
		if err := g.Connect(src.node, src.sock.Name, dst.node, dst.sock.Name); err != nil {
			dropped++
			log.Info("link dropped on rebuild", zap.Error(err))
			continue
		}
		restored++
	}
	return restored, dropped
}
