package graph

// NodeKind enumerates the closed set of node types. Construction trees use
// the first group, the zone/airflow network the rest.
type NodeKind int

const (
	NodeConstruction      NodeKind = iota // active surface construction
	NodeLayer                             // material layer in a construction stack
	NodePV                                // photovoltaic generator attachment
	NodeFrame                             // window frame and divider
	NodeZone                              // thermal zone
	NodeThermalChimney                    // zone acting as a thermal chimney
	NodeExternal                          // airflow external node
	NodeSimpleFlow                        // crack / effective leakage area link
	NodeDetailedFlow                      // operable opening link
	NodeAmbientConnection                 // airflow network simulation control
	NodeCrackReference                    // reference crack conditions
	NodeEMSProgram                        // EMS program text
	NodeEMSScripted                       // EMS python plugin
	NodeHVAC                              // ideal loads HVAC
	NodeOccupancy                         // people
	NodeEquipment                         // other equipment gains
	NodeInfiltration                      // design flow infiltration
	NodeSchedule                          // compact schedule
)

func (k NodeKind) String() string {
	switch k {
	case NodeConstruction:
		return "construction"
	case NodeLayer:
		return "layer"
	case NodePV:
		return "pv"
	case NodeFrame:
		return "frame"
	case NodeZone:
		return "zone"
	case NodeThermalChimney:
		return "thermal-chimney"
	case NodeExternal:
		return "external"
	case NodeSimpleFlow:
		return "simple-flow"
	case NodeDetailedFlow:
		return "detailed-flow"
	case NodeAmbientConnection:
		return "ambient-connection"
	case NodeCrackReference:
		return "crack-reference"
	case NodeEMSProgram:
		return "ems-program"
	case NodeEMSScripted:
		return "ems-scripted"
	case NodeHVAC:
		return "hvac"
	case NodeOccupancy:
		return "occupancy"
	case NodeEquipment:
		return "equipment"
	case NodeInfiltration:
		return "infiltration"
	case NodeSchedule:
		return "schedule"
	default:
		return "unknown"
	}
}

// ZoneBound reports whether nodes of this kind are bound to a zone by name
// and are therefore owned by the network builder.
func (k NodeKind) ZoneBound() bool {
	return k == NodeZone || k == NodeThermalChimney
}

// SocketKind is the type of value a socket carries. Links may only join
// sockets of the same kind.
type SocketKind int

const (
	SocketBoundary     SocketKind = iota // inter-zone surface boundary
	SocketSimpleFlow                     // airflow surface served by a simple link
	SocketDetailedFlow                   // airflow surface served by an opening
	SocketLayer
	SocketPV
	SocketFrame
	SocketSchedule
	SocketHVAC
	SocketOccupancy
	SocketEquipment
	SocketInfiltration
)

func (k SocketKind) String() string {
	switch k {
	case SocketBoundary:
		return "boundary"
	case SocketSimpleFlow:
		return "simple-flow"
	case SocketDetailedFlow:
		return "detailed-flow"
	case SocketLayer:
		return "layer"
	case SocketPV:
		return "pv"
	case SocketFrame:
		return "frame"
	case SocketSchedule:
		return "schedule"
	case SocketHVAC:
		return "hvac"
	case SocketOccupancy:
		return "occupancy"
	case SocketEquipment:
		return "equipment"
	case SocketInfiltration:
		return "infiltration"
	default:
		return "unknown"
	}
}

// Removable reports whether links on sockets of this kind are regenerated
// with the zone geometry and must be captured and replayed on rebuild.
func (k SocketKind) Removable() bool {
	return k == SocketBoundary || k == SocketSimpleFlow || k == SocketDetailedFlow
}

// Socket is a named, typed connection point on a node.
type Socket struct {
	Name string     `json:"name"`
	Kind SocketKind `json:"kind"`
	UID  string     `json:"uid"`
	// Multi inputs accept any number of links.
	Multi bool `json:"multi,omitempty"`
}

// Node is the fundamental element of the graph.
type Node struct {
	ID      NodeID    `json:"id"`
	Kind    NodeKind  `json:"kind"`
	Name    string    `json:"name,omitempty"`
	Bad     bool      `json:"bad,omitempty"` // flagged invalid; blocks export
	Inputs  []*Socket `json:"inputs,omitempty"`
	Outputs []*Socket `json:"outputs,omitempty"`
	Data    NodeData  `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Input returns the input socket with the given name, or nil.
func (n *Node) Input(name string) *Socket {
	for _, s := range n.Inputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Output returns the output socket with the given name, or nil.
func (n *Node) Output(name string) *Socket {
	for _, s := range n.Outputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddInput appends an input socket with a fresh UID and returns it.
func (n *Node) AddInput(name string, kind SocketKind) *Socket {
	s := &Socket{Name: name, Kind: kind, UID: NewSocketUID()}
	n.Inputs = append(n.Inputs, s)
	return s
}

// AddMultiInput appends an input socket that accepts several links.
func (n *Node) AddMultiInput(name string, kind SocketKind) *Socket {
	s := n.AddInput(name, kind)
	s.Multi = true
	return s
}

// AddOutput appends an output socket with a fresh UID and returns it.
func (n *Node) AddOutput(name string, kind SocketKind) *Socket {
	s := &Socket{Name: name, Kind: kind, UID: NewSocketUID()}
	n.Outputs = append(n.Outputs, s)
	return s
}

// ZoneName returns the zone a zone-bound node is attached to.
func (n *Node) ZoneName() (string, bool) {
	switch d := n.Data.(type) {
	case ZoneData:
		return d.Zone, true
	case ThermalChimneyData:
		return d.Zone, true
	}
	return "", false
}
