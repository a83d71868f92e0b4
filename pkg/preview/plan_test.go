package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/construction"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(z float64) []v3.Vec {
	return []v3.Vec{{X: 0, Y: 0, Z: z}, {X: 2, Y: 0, Z: z}, {X: 2, Y: 1, Z: z}, {X: 0, Y: 1, Z: z}}
}

func testZone() *canon.Zone {
	m := &kernel.Mesh{}
	m.AddFace(square(3), 1)
	m.AddFace(square(0), 0)
	return &canon.Zone{
		Name: "EN_OFFICE",
		Mesh: m,
		Faces: []canon.FaceRef{
			{ID: 2, Material: "roof", Kind: graph.ConRoof},
			{ID: 1, Material: "slab", Kind: graph.ConFloor},
		},
	}
}

func TestPlan(t *testing.T) {
	set := construction.NewSet(nil, nil)
	set.Add(&construction.Construction{Name: "roof", Kind: graph.ConRoof})

	var buf bytes.Buffer
	require.NoError(t, Plan(&buf, []*canon.Zone{testZone()}, SetPalette(set), 10))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `width="60"`)
	assert.Contains(t, out, `height="50"`)
	assert.Contains(t, out, "<title>EN_OFFICE_2</title>")
	assert.Contains(t, out, "fill:#00ff00", "roof colour")
	assert.Contains(t, out, "fill:#bbbbbb", "floor has no construction")
	// the floor sits below the roof and is painted first
	assert.Less(t, strings.Index(out, "EN_OFFICE_1"), strings.Index(out, "EN_OFFICE_2"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestPlanEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Plan(&buf, nil, SetPalette(construction.NewSet(nil, nil)), 0))
}
