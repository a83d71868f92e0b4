package graph

import "fmt"

// Link joins an output socket of one node to an input socket of another.
// Sockets are addressed by name within their node.
type Link struct {
	From       NodeID `json:"from"`
	FromSocket string `json:"from_socket"`
	To         NodeID `json:"to"`
	ToSocket   string `json:"to_socket"`
}

// Graph holds nodes in insertion order plus the links between them. The
// insertion order is the stable enumeration order used wherever a choice
// between equivalent nodes has to be made.
type Graph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Order     []NodeID          `json:"order"`
	NameIndex map[string]NodeID `json:"name_index"`
	Links     []Link            `json:"links"`
	Version   uint64            `json:"version"`
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph, replacing any node with the same ID.
func (g *Graph) AddNode(n *Node) {
	if _, exists := g.Nodes[n.ID]; !exists {
		g.Order = append(g.Order, n.ID)
	}
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
	g.Version++
}

// RemoveNode deletes a node and every link touching it.
func (g *Graph) RemoveNode(id NodeID) {
	n, ok := g.Nodes[id]
	if !ok {
		return
	}
	delete(g.Nodes, id)
	if n.Name != "" && g.NameIndex[n.Name] == id {
		delete(g.NameIndex, n.Name)
	}
	for i, oid := range g.Order {
		if oid == id {
			g.Order = append(g.Order[:i], g.Order[i+1:]...)
			break
		}
	}
	kept := g.Links[:0]
	for _, l := range g.Links {
		if l.From != id && l.To != id {
			kept = append(kept, l)
		}
	}
	g.Links = kept
	g.Version++
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *Graph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *Graph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Ordered returns all nodes in insertion order.
func (g *Graph) Ordered() []*Node {
	nodes := make([]*Node, 0, len(g.Order))
	for _, id := range g.Order {
		if n := g.Nodes[id]; n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// OfKind returns the nodes of the given kinds in insertion order.
func (g *Graph) OfKind(kinds ...NodeKind) []*Node {
	var out []*Node
	for _, n := range g.Ordered() {
		for _, k := range kinds {
			if n.Kind == k {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Connect links the output socket out of from to the input socket in of
// to. Both sockets must exist and carry the same kind, and an input takes
// at most one link unless it is a multi input.
func (g *Graph) Connect(from *Node, out string, to *Node, in string) error {
	if g.Nodes[from.ID] == nil || g.Nodes[to.ID] == nil {
		return fmt.Errorf("graph: connect: node not in graph")
	}
	src := from.Output(out)
	if src == nil {
		return fmt.Errorf("graph: connect: %s has no output %q", from.Kind, out)
	}
	dst := to.Input(in)
	if dst == nil {
		return fmt.Errorf("graph: connect: %s has no input %q", to.Kind, in)
	}
	if src.Kind != dst.Kind {
		return fmt.Errorf("graph: connect: socket kind mismatch %s -> %s", src.Kind, dst.Kind)
	}
	if !dst.Multi && len(g.LinksInto(to.ID, in)) > 0 {
		return fmt.Errorf("graph: connect: input %q of %s is already linked", in, to.Kind)
	}
	g.Links = append(g.Links, Link{From: from.ID, FromSocket: out, To: to.ID, ToSocket: in})
	g.Version++
	return nil
}

// Disconnect removes a link if present.
func (g *Graph) Disconnect(l Link) {
	for i, x := range g.Links {
		if x == l {
			g.Links = append(g.Links[:i], g.Links[i+1:]...)
			g.Version++
			return
		}
	}
}

// LinksInto returns the links arriving at input socket in of node id.
func (g *Graph) LinksInto(id NodeID, in string) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.To == id && l.ToSocket == in {
			out = append(out, l)
		}
	}
	return out
}

// LinksFrom returns the links leaving output socket out of node id.
func (g *Graph) LinksFrom(id NodeID, out string) []Link {
	var res []Link
	for _, l := range g.Links {
		if l.From == id && l.FromSocket == out {
			res = append(res, l)
		}
	}
	return res
}

// LinksOf returns every link touching node id.
func (g *Graph) LinksOf(id NodeID) []Link {
	var res []Link
	for _, l := range g.Links {
		if l.From == id || l.To == id {
			res = append(res, l)
		}
	}
	return res
}

// Upstream returns the node feeding input socket in of n, or nil when the
// input is unlinked.
func (g *Graph) Upstream(n *Node, in string) *Node {
	links := g.LinksInto(n.ID, in)
	if len(links) == 0 {
		return nil
	}
	return g.Nodes[links[0].From]
}

// Bad returns the nodes flagged invalid, in insertion order.
func (g *Graph) Bad() []*Node {
	var out []*Node
	for _, n := range g.Ordered() {
		if n.Bad {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}
