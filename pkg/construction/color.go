package construction

import (
	"fmt"

	"github.com/chazu/envi/pkg/graph"
)

// Color is a display colour with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return int(v*255 + 0.5)
}

var kindColors = map[graph.ConKind]Color{
	graph.ConWall:      {1, 1, 1},
	graph.ConPartition: {1, 1, 0},
	graph.ConWindow:    {0, 1, 1},
	graph.ConRoof:      {0, 1, 0},
	graph.ConCeiling:   {1, 1, 0},
	graph.ConFloor:     {0.44, 0.185, 0.07},
	graph.ConShading:   {1, 0, 0},
}

var pvColor = Color{1, 1, 0}

// DisplayColor returns the informational colour for c. Zone-bounded
// constructions show as partitions and PV overrides everything. ok is
// false for kinds with no assigned colour.
func DisplayColor(c *Construction) (Color, bool) {
	if c.PV != nil {
		return pvColor, true
	}
	kind := c.Kind
	if _, ok := kindColors[kind]; !ok {
		return Color{}, false
	}
	if c.Boundary == graph.BoundZone {
		kind = graph.ConPartition
	}
	return kindColors[kind], true
}
