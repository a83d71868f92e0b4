// Package scene is the input model the exporter consumes: collections of
// placed polygon objects, the materials their faces use, the zone/airflow
// network and the simulation parameters. A scene is normally produced by
// the engine package from a scene-description script.
package scene

import (
	"sort"
	"strings"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/kernel"
)

// ObjectType is the role an object plays in the energy model.
type ObjectType int

const (
	ObjectZone    ObjectType = iota // thermal zone geometry
	ObjectShading                   // site shading, never a zone
	ObjectChimney                   // thermal chimney zone
)

func (t ObjectType) String() string {
	switch t {
	case ObjectZone:
		return "zone"
	case ObjectShading:
		return "shading"
	case ObjectChimney:
		return "chimney"
	default:
		return "unknown"
	}
}

// Thermal reports whether objects of this type enclose a zone volume.
func (t ObjectType) Thermal() bool {
	return t == ObjectZone || t == ObjectChimney
}

// Material is a named material whose construction graph describes how its
// faces are exported. A nil Graph means the material has no construction.
type Material struct {
	Name  string
	Graph *graph.Graph
}

// Object is one placed polygon mesh. Face slots index Slots, which hold
// material names; an empty name is an empty slot.
type Object struct {
	Name      string
	Type      ObjectType
	Mesh      *kernel.Mesh
	Slots     []string
	Transform kernel.Transform
	// Keys overrides Transform from the keyed frame onwards.
	Keys map[int]kernel.Transform
}

// WorldTransform returns the object placement at frame: the latest key at
// or before frame, or the base transform when no key applies.
func (o *Object) WorldTransform(frame int) kernel.Transform {
	best, found := 0, false
	for f := range o.Keys {
		if f <= frame && (!found || f > best) {
			best, found = f, true
		}
	}
	if found {
		return o.Keys[best]
	}
	return o.Transform
}

// SlotMaterial returns the material name in slot, or "" when the slot is
// empty or out of range.
func (o *Object) SlotMaterial(slot int) string {
	if slot < 0 || slot >= len(o.Slots) {
		return ""
	}
	return o.Slots[slot]
}

// Collection groups the objects that make up one zone.
type Collection struct {
	Name    string
	Objects []*Object
}

// ZoneName returns the exported zone name for the collection.
func (c *Collection) ZoneName() string {
	return ZoneName(c.Name)
}

// ZoneName derives an exported zone name from a collection name:
// "EN_" followed by the upper-cased name with '-' and '/' replaced.
func ZoneName(collection string) string {
	r := strings.NewReplacer("-", "_", "/", "_")
	return "EN_" + r.Replace(strings.ToUpper(collection))
}

// Link is a network connection requested by node and socket name. Surface
// sockets only exist once zones are built, so these are applied by the
// network builder after every rebuild.
type Link struct {
	From       string
	FromSocket string
	To         string
	ToSocket   string
}

// Scene is everything one export run reads.
type Scene struct {
	Name          string
	Materials     map[string]*Material
	MaterialOrder []string
	Collections   []*Collection
	Network       *graph.Graph
	Links         []Link
	Params        Params
}

// New returns an empty scene with default parameters.
func New(name string) *Scene {
	return &Scene{
		Name:      name,
		Materials: make(map[string]*Material),
		Network:   graph.New(),
		Params:    DefaultParams(),
	}
}

// AddMaterial registers m, replacing any material of the same name while
// keeping its original position in MaterialOrder.
func (s *Scene) AddMaterial(m *Material) {
	if _, ok := s.Materials[m.Name]; !ok {
		s.MaterialOrder = append(s.MaterialOrder, m.Name)
	}
	s.Materials[m.Name] = m
}

// Material returns the named material, or nil.
func (s *Scene) Material(name string) *Material {
	return s.Materials[name]
}

// OrderedMaterials returns materials in registration order.
func (s *Scene) OrderedMaterials() []*Material {
	out := make([]*Material, 0, len(s.MaterialOrder))
	for _, name := range s.MaterialOrder {
		if m := s.Materials[name]; m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Collection returns the named collection, creating it if needed.
func (s *Scene) Collection(name string) *Collection {
	for _, c := range s.Collections {
		if c.Name == name {
			return c
		}
	}
	c := &Collection{Name: name}
	s.Collections = append(s.Collections, c)
	return c
}

// Frames returns the frames to export in ascending order.
func (s *Scene) Frames() []int {
	start, end := s.Params.FrameStart, s.Params.FrameEnd
	if end < start {
		end = start
	}
	frames := make([]int, 0, end-start+1)
	for f := start; f <= end; f++ {
		frames = append(frames, f)
	}
	return frames
}

// KeyFrames returns the sorted keyed frames of o.
func (o *Object) KeyFrames() []int {
	frames := make([]int, 0, len(o.Keys))
	for f := range o.Keys {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames
}
