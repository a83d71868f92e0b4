package graph

import "github.com/google/uuid"

// NodeID is a content-addressed identifier for graph nodes. IDs are derived
// from a creation path, so the same script always yields the same IDs.
type NodeID string

// ZeroID is the empty node identifier.
const ZeroID NodeID = ""

// idNamespace scopes node IDs so they never collide with socket UIDs.
var idNamespace = uuid.MustParse("5c1f0a4e-7d1c-4a8e-9f51-3b2d6f0c9e11")

// NewNodeID derives a deterministic ID from a creation path such as
// "zone/EN_OFFICE".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(idNamespace, []byte(path)).String())
}

// NewSocketUID returns a fresh socket identifier.
func NewSocketUID() string {
	return uuid.NewString()
}

// SurfaceSocketUID derives the identifier of a surface socket from the
// zone it belongs to, so a zone whose node is recreated gets the same
// socket identifiers back.
func SurfaceSocketUID(zone, socket string, output bool) string {
	dir := "in"
	if output {
		dir = "out"
	}
	return uuid.NewSHA1(idNamespace, []byte("socket/"+zone+"/"+socket+"/"+dir)).String()
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns an abbreviated form for log and error messages.
func (id NodeID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

func (id NodeID) String() string {
	return string(id)
}
