// Package canon turns the raw objects of a scene into one clean, closed
// polygon mesh per zone. Every object mesh is welded, split along material
// boundaries, stripped of degenerate and non-exported faces and merged
// into coplanar polygons; surviving faces receive stable IDs from the
// identity registry. The objects of a collection are then joined in world
// space and the enclosed volume is integrated.
package canon

import (
	"fmt"

	"github.com/chazu/envi/pkg/geom"
	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/identity"
	"github.com/chazu/envi/pkg/kernel"
	"github.com/chazu/envi/pkg/scene"
	"go.uber.org/zap"
)

// Warning kinds reported by the canonicalizer.
const (
	WarnNoMaterial = "no-material"
	WarnEmptySlot  = "empty-slot"
)

// Options are the cleanup tolerances.
type Options struct {
	Merge      float64 // vertex weld distance
	Degenerate float64 // shortest kept edge
	Angle      float64 // coplanar merge limit, radians
	MinArea    float64 // smallest kept face
}

// DefaultOptions returns the standard cleanup tolerances.
func DefaultOptions() Options {
	return Options{Merge: 0.005, Degenerate: 0.005, Angle: 0.001, MinArea: 0.001}
}

// Materials classifies face materials. ok is false when the material has
// no export construction.
type Materials interface {
	Kind(material string) (kind graph.ConKind, ok bool)
}

// Reporter receives non-fatal findings.
type Reporter interface {
	Warn(kind, subject, message string)
}

// FaceRef describes one face of a zone mesh, index-aligned with
// Zone.Mesh.Faces.
type FaceRef struct {
	ID       int
	Material string
	Object   string
	Kind     graph.ConKind
}

// Zone is the canonical geometry of one collection.
type Zone struct {
	Name       string
	Collection string
	Kind       scene.ObjectType
	Mesh       *kernel.Mesh // world space
	Faces      []FaceRef
	Volume     float64
	FloorArea  float64
}

// SurfaceName returns the exported name of face i.
func (z *Zone) SurfaceName(i int) string {
	return fmt.Sprintf("%s_%d", z.Name, z.Faces[i].ID)
}

// FaceIndex returns the mesh index of the face with the given ID, or -1.
func (z *Zone) FaceIndex(id int) int {
	for i, f := range z.Faces {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// Canonicalizer runs the cleanup pipeline.
type Canonicalizer struct {
	kernel   kernel.Kernel
	registry *identity.Registry
	opts     Options
	log      *zap.Logger
	report   Reporter
}

// New returns a Canonicalizer. A nil logger disables logging and a nil
// reporter drops warnings after logging them.
func New(k kernel.Kernel, reg *identity.Registry, opts Options, log *zap.Logger, report Reporter) *Canonicalizer {
	if log == nil {
		log = zap.NewNop()
	}
	if reg == nil {
		reg = identity.New()
	}
	return &Canonicalizer{kernel: k, registry: reg, opts: opts, log: log, report: report}
}

func (c *Canonicalizer) warn(kind, subject, message string) {
	c.log.Warn(message, zap.String("kind", kind), zap.String("subject", subject))
	if c.report != nil {
		c.report.Warn(kind, subject, message)
	}
}

// Scene canonicalizes every collection of s for frame, in collection
// order. Collections that end up empty are left out.
func (c *Canonicalizer) Scene(s *scene.Scene, frame int, mats Materials) ([]*Zone, error) {
	var zones []*Zone
	for _, col := range s.Collections {
		z, err := c.Collection(col, frame, s.Params, mats)
		if err != nil {
			return nil, err
		}
		if z != nil {
			zones = append(zones, z)
		}
	}
	return zones, nil
}

// Collection canonicalizes the objects of col and joins them into one
// zone. It returns nil when no face survives.
func (c *Canonicalizer) Collection(col *scene.Collection, frame int, params scene.Params, mats Materials) (*Zone, error) {
	name := col.ZoneName()
	z := &Zone{
		Name:       name,
		Collection: col.Name,
		Kind:       scene.ObjectShading,
		Mesh:       &kernel.Mesh{Name: name},
	}
	ids := c.registry.Session(name)

	for _, obj := range col.Objects {
		m, refs := c.Object(obj, mats, ids)
		if m == nil {
			continue
		}
		t := obj.WorldTransform(frame)
		t.Translation = t.Translation.Add(params.GeoOffset)
		world := c.kernel.Apply(m, t)

		// Slots are rewritten to indexes into the joined face table.
		base := len(z.Faces)
		for i := range world.Faces {
			world.Faces[i].Slot = base + i
		}
		z.Mesh.Append(world, 0)
		z.Faces = append(z.Faces, refs...)

		switch {
		case obj.Type == scene.ObjectZone:
			z.Kind = scene.ObjectZone
		case obj.Type == scene.ObjectChimney && z.Kind != scene.ObjectZone:
			z.Kind = scene.ObjectChimney
		}
	}

	if z.Mesh.IsEmpty() {
		c.log.Debug("collection dropped, no faces", zap.String("collection", col.Name))
		return nil, nil
	}

	for i, f := range z.Faces {
		if f.Kind == graph.ConFloor {
			z.FloorArea += geom.Area(z.Mesh.FaceVerts(i))
		}
	}
	if z.Kind.Thermal() {
		tris, err := c.kernel.Triangulate(z.Mesh)
		if err != nil {
			return nil, fmt.Errorf("canon: zone %s: %w", name, err)
		}
		z.Volume = c.kernel.Volume(tris)
	}

	c.log.Debug("zone canonicalized",
		zap.String("zone", name),
		zap.Int("faces", z.Mesh.FaceCount()),
		zap.Float64("volume", z.Volume),
		zap.Int("frame", frame))
	return z, nil
}

// Object cleans one object mesh in object space and assigns face IDs. It
// returns nil when every face is deleted.
func (c *Canonicalizer) Object(obj *scene.Object, mats Materials, ids *identity.Session) (*kernel.Mesh, []FaceRef) {
	c.checkSlots(obj, mats)
	if obj.Mesh == nil || obj.Mesh.IsEmpty() {
		return nil, nil
	}

	m := obj.Mesh.Clone()
	MergeVertices(m, c.opts.Merge)
	SplitMaterialEdges(m)
	DissolveDegenerate(m, c.opts.Degenerate)
	DissolveLimit(m, c.opts.Angle)
	DeleteFaces(m, func(f kernel.Face) bool {
		kind, ok := mats.Kind(obj.SlotMaterial(f.Slot))
		return !ok || kind == graph.ConNone
	})
	DeleteSmallFaces(m, c.opts.MinArea)
	DeleteLoose(m)

	if m.IsEmpty() {
		c.log.Debug("object discarded, no exportable faces", zap.String("object", obj.Name))
		return nil, nil
	}

	refs := make([]FaceRef, len(m.Faces))
	for i, f := range m.Faces {
		pts := m.FaceVerts(i)
		mat := obj.SlotMaterial(f.Slot)
		kind, _ := mats.Kind(mat)
		id := ids.Assign(identity.FaceKey(obj.Name, mat, geom.Centroid(pts), geom.Normal(pts)))
		m.Faces[i].ID = id
		refs[i] = FaceRef{ID: id, Material: mat, Object: obj.Name, Kind: kind}
	}
	return m, refs
}

// checkSlots warns about empty slots and about thermal objects with no
// exportable material at all.
func (c *Canonicalizer) checkSlots(obj *scene.Object, mats Materials) {
	exportable := false
	for _, name := range obj.Slots {
		if name == "" {
			continue
		}
		if kind, ok := mats.Kind(name); ok && kind != graph.ConNone {
			exportable = true
		}
	}
	switch {
	case obj.Type.Thermal() && !exportable:
		c.warn(WarnNoMaterial, obj.Name, fmt.Sprintf("object %s is specified as a thermal zone but has no exportable materials", obj.Name))
	case hasEmptySlot(obj):
		c.warn(WarnEmptySlot, obj.Name, fmt.Sprintf("object %s has an empty material slot", obj.Name))
	}
}

func hasEmptySlot(obj *scene.Object) bool {
	for _, name := range obj.Slots {
		if name == "" {
			return true
		}
	}
	return false
}
