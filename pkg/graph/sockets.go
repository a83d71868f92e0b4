package graph

import (
	"strconv"
	"strings"
)

// Standard socket names.
const (
	SockOuterLayer = "Outer layer"
	SockLayer      = "Layer"
	SockPV         = "PV"
	SockFrame      = "Frame"

	SockHVAC         = "HVAC"
	SockOccupancy    = "Occupancy"
	SockEquipment    = "Equipment"
	SockInfiltration = "Infiltration"
	SockVASchedule   = "VASchedule"
	SockTSPSchedule  = "TSPSchedule"

	SockSchedule     = "Schedule"
	SockHeatSchedule = "HSchedule"
	SockCoolSchedule = "CSchedule"
	SockOccSchedule  = "OSchedule"
	SockActSchedule  = "ASchedule"
	SockWESchedule   = "WSchedule"
	SockAVSchedule   = "VSchedule"
	SockCloSchedule  = "CloSchedule"

	SockNode1    = "Node 1"
	SockNode2    = "Node 2"
	SockSimple   = "Simple"
	SockDetailed = "Detailed"
)

// NewNode creates a node of the given kind with its standard sockets and a
// deterministic ID derived from kind and name.
func NewNode(kind NodeKind, name string, data NodeData) *Node {
	n := &Node{
		ID:   NewNodeID(kind.String() + "/" + name),
		Kind: kind,
		Name: name,
		Data: data,
	}
	switch kind {
	case NodeConstruction:
		n.AddInput(SockOuterLayer, SocketLayer)
		n.AddInput(SockPV, SocketPV)
		n.AddInput(SockFrame, SocketFrame)
	case NodeLayer:
		n.AddInput(SockLayer, SocketLayer)
		n.AddOutput(SockLayer, SocketLayer)
	case NodePV:
		n.AddOutput(SockPV, SocketPV)
	case NodeFrame:
		n.AddOutput(SockFrame, SocketFrame)
	case NodeZone, NodeThermalChimney:
		n.AddInput(SockHVAC, SocketHVAC)
		n.AddInput(SockOccupancy, SocketOccupancy)
		n.AddInput(SockEquipment, SocketEquipment)
		n.AddInput(SockInfiltration, SocketInfiltration)
		n.AddInput(SockVASchedule, SocketSchedule)
		n.AddInput(SockTSPSchedule, SocketSchedule)
	case NodeExternal:
		n.AddMultiInput(SockSimple, SocketSimpleFlow)
		n.AddMultiInput(SockDetailed, SocketDetailedFlow)
	case NodeSimpleFlow:
		n.AddMultiInput(SockNode1, SocketSimpleFlow)
		n.AddOutput(SockNode2, SocketSimpleFlow)
	case NodeDetailedFlow:
		n.AddMultiInput(SockNode1, SocketDetailedFlow)
		n.AddOutput(SockNode2, SocketDetailedFlow)
		n.AddInput(SockVASchedule, SocketSchedule)
		n.AddInput(SockTSPSchedule, SocketSchedule)
	case NodeHVAC:
		n.AddInput(SockSchedule, SocketSchedule)
		n.AddInput(SockHeatSchedule, SocketSchedule)
		n.AddInput(SockCoolSchedule, SocketSchedule)
		n.AddOutput(SockHVAC, SocketHVAC)
	case NodeOccupancy:
		n.AddInput(SockOccSchedule, SocketSchedule)
		n.AddInput(SockActSchedule, SocketSchedule)
		n.AddInput(SockWESchedule, SocketSchedule)
		n.AddInput(SockAVSchedule, SocketSchedule)
		n.AddInput(SockCloSchedule, SocketSchedule)
		n.AddOutput(SockOccupancy, SocketOccupancy)
	case NodeEquipment:
		n.AddInput(SockSchedule, SocketSchedule)
		n.AddOutput(SockEquipment, SocketEquipment)
	case NodeInfiltration:
		n.AddInput(SockSchedule, SocketSchedule)
		n.AddOutput(SockInfiltration, SocketInfiltration)
	case NodeSchedule:
		n.AddOutput(SockSchedule, SocketSchedule)
	}
	return n
}

// Surface socket suffixes. A zone node carries one input and one output of
// each applicable kind per exported face, named <material>_<face id><suffix>.
const (
	SuffixBoundary     = "_b"
	SuffixSimpleFlow   = "_s"
	SuffixDetailedFlow = "_ss"
)

// SurfaceSocketName returns the zone socket name for a face.
func SurfaceSocketName(material string, faceID int, kind SocketKind) string {
	suffix := SuffixBoundary
	switch kind {
	case SocketSimpleFlow:
		suffix = SuffixSimpleFlow
	case SocketDetailedFlow:
		suffix = SuffixDetailedFlow
	}
	return material + "_" + strconv.Itoa(faceID) + suffix
}

// ParseSurfaceSocket splits a surface socket name into material, face ID
// and socket kind.
func ParseSurfaceSocket(name string) (material string, faceID int, kind SocketKind, ok bool) {
	var rest string
	switch {
	case strings.HasSuffix(name, SuffixDetailedFlow):
		rest, kind = strings.TrimSuffix(name, SuffixDetailedFlow), SocketDetailedFlow
	case strings.HasSuffix(name, SuffixSimpleFlow):
		rest, kind = strings.TrimSuffix(name, SuffixSimpleFlow), SocketSimpleFlow
	case strings.HasSuffix(name, SuffixBoundary):
		rest, kind = strings.TrimSuffix(name, SuffixBoundary), SocketBoundary
	default:
		return "", 0, 0, false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", 0, 0, false
	}
	id, err := strconv.Atoi(rest[i+1:])
	if err != nil || id <= 0 {
		return "", 0, 0, false
	}
	return rest[:i], id, kind, true
}

// AddSurfaceSocket appends a surface socket with the identifier derived
// for zone.
func (n *Node) AddSurfaceSocket(zone, name string, kind SocketKind, output bool) *Socket {
	s := &Socket{Name: name, Kind: kind, UID: SurfaceSocketUID(zone, name, output)}
	if output {
		n.Outputs = append(n.Outputs, s)
	} else {
		n.Inputs = append(n.Inputs, s)
	}
	return s
}
