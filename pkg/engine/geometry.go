package engine

import (
	"fmt"

	"github.com/chazu/envi/pkg/kernel"
	"github.com/chazu/envi/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Geometry values
// ---------------------------------------------------------------------------

// sexpFace is a polygon carrying the material its surfaces are exported
// with.
type sexpFace struct {
	material string
	pts      []v3.Vec
}

func (f *sexpFace) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(face %q (%d vertices))", f.material, len(f.pts))
}
func (f *sexpFace) Type() *zygo.RegisteredType { return nil }

type sexpKey struct {
	frame int
	t     kernel.Transform
}

func (k *sexpKey) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(key %d)", k.frame)
}
func (k *sexpKey) Type() *zygo.RegisteredType { return nil }

type sexpObject struct {
	obj *scene.Object
}

func (o *sexpObject) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(object %q :type :%s)", o.obj.Name, o.obj.Type)
}
func (o *sexpObject) Type() *zygo.RegisteredType { return nil }

var objectTypes = map[string]scene.ObjectType{
	"zone":    scene.ObjectZone,
	"shading": scene.ObjectShading,
	"chimney": scene.ObjectChimney,
}

// Wall sides of a shoebox.
var sides = map[string]int{"south": 0, "east": 1, "north": 2, "west": 3}

// transformArgs reads :at, :rotate and :scale over t.
func transformArgs(a *kwArgs, t *kernel.Transform) {
	a.vec("at", &t.Translation)
	a.vec("rotate", &t.Rotation)
	a.vec("scale", &t.Scale)
}

// splitWall splits the wall quad q (bottom left, bottom right, top right,
// top left seen from outside) into a full-height opening over fraction f of
// its width, measured from the left, and the remaining wall.
func splitWall(q [4]v3.Vec, f float64) (opening, rest []v3.Vec) {
	b := q[0].Add(q[1].Sub(q[0]).MulScalar(f))
	t := q[3].Add(q[2].Sub(q[3]).MulScalar(f))
	return []v3.Vec{q[0], b, t, q[3]}, []v3.Vec{b, q[1], q[2], t}
}

// shoeboxFaces returns the outward wound faces of an axis aligned box with
// its minimum corner at o.
func shoeboxFaces(o v3.Vec, x, y, z float64, wall, floor, roof, window string, wwr float64, side int) []*sexpFace {
	c := func(a, b, d float64) v3.Vec { return o.Add(v3.Vec{X: a, Y: b, Z: d}) }
	faces := []*sexpFace{
		{floor, []v3.Vec{c(0, 0, 0), c(0, y, 0), c(x, y, 0), c(x, 0, 0)}},
		{roof, []v3.Vec{c(0, 0, z), c(x, 0, z), c(x, y, z), c(0, y, z)}},
	}
	walls := [4][4]v3.Vec{
		{c(0, 0, 0), c(x, 0, 0), c(x, 0, z), c(0, 0, z)},
		{c(x, 0, 0), c(x, y, 0), c(x, y, z), c(x, 0, z)},
		{c(x, y, 0), c(0, y, 0), c(0, y, z), c(x, y, z)},
		{c(0, y, 0), c(0, 0, 0), c(0, 0, z), c(0, y, z)},
	}
	for i, q := range walls {
		if i != side || window == "" || wwr <= 0 {
			faces = append(faces, &sexpFace{wall, q[:]})
			continue
		}
		if wwr >= 1 {
			faces = append(faces, &sexpFace{window, q[:]})
			continue
		}
		opening, rest := splitWall(q, wwr)
		faces = append(faces, &sexpFace{wall, rest}, &sexpFace{window, opening})
	}
	return faces
}

func facesToSexp(faces []*sexpFace) zygo.Sexp {
	out := make([]zygo.Sexp, len(faces))
	for i, f := range faces {
		out[i] = f
	}
	return &zygo.SexpArray{Val: out}
}

var geometryForms = map[string]builtin{
	// (face "wall" (vec3 0 0 0) (vec3 4 0 0) (vec3 4 0 3) (vec3 0 0 3))
	"face": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 4 {
			return zygo.SexpNull, fmt.Errorf("face requires a material and at least 3 vertices")
		}
		material, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: material: %w", err)
		}
		f := &sexpFace{material: material}
		for i, arg := range flatten(args[1:]) {
			v, err := toVec3(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: vertex %d: %w", i+1, err)
			}
			f.pts = append(f.pts, v)
		}
		return f, nil
	},

	// (shoebox :width 4 :depth 3 :height 2.5 :origin (vec3 0 0 0)
	//          :wall "wall" :floor "floor" :roof "roof"
	//          :window "glass" :wwr 0.4 :window-side :north)
	"shoebox": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("shoebox", args)
		var (
			x, y, z                   float64
			origin                    v3.Vec
			wall, floor, roof, window string
			wwr                       float64
			side                      = sides["north"]
		)
		a.float("width", &x)
		a.float("depth", &y)
		a.float("height", &z)
		a.vec("origin", &origin)
		a.str("wall", &wall)
		a.str("floor", &floor)
		a.str("roof", &roof)
		a.str("window", &window)
		a.float("wwr", &wwr)
		kwEnum(a, "window-side", sides, &side)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		if x <= 0 || y <= 0 || z <= 0 {
			return zygo.SexpNull, fmt.Errorf("shoebox: dimensions must be positive, got %gx%gx%g", x, y, z)
		}
		if floor == "" {
			floor = wall
		}
		if roof == "" {
			roof = wall
		}
		return facesToSexp(shoeboxFaces(origin, x, y, z, wall, floor, roof, window, wwr, side)), nil
	},

	// (key 10 :at (vec3 0 0 1) :rotate (vec3 0 0 90))
	"key": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("key", args)
		if len(a.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("key requires a frame number")
		}
		frame, err := toFloat64(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("key: frame: %w", err)
		}
		k := &sexpKey{frame: int(frame), t: kernel.Identity()}
		transformArgs(a, &k.t)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		return k, nil
	},

	// (object "office" :type :zone :at (vec3 10 0 0) (shoebox ...) (key 5 ...))
	"object": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("object", args)
		name := a.name(0)
		obj := &scene.Object{Name: name, Type: scene.ObjectZone, Transform: kernel.Identity()}
		kwEnum(a, "type", objectTypes, &obj.Type)
		transformArgs(a, &obj.Transform)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}

		mesh := &kernel.Mesh{Name: name}
		slots := make(map[string]int)
		for i, part := range flatten(a.positional[1:]) {
			switch v := part.(type) {
			case *sexpFace:
				slot, ok := slots[v.material]
				if !ok {
					slot = len(obj.Slots)
					slots[v.material] = slot
					obj.Slots = append(obj.Slots, v.material)
				}
				mesh.AddFace(v.pts, slot)
			case *sexpKey:
				if obj.Keys == nil {
					obj.Keys = make(map[int]kernel.Transform)
				}
				obj.Keys[v.frame] = v.t
			default:
				return zygo.SexpNull, fmt.Errorf("object: %s: part %d: expected face or key, got %T (%s)",
					name, i+1, part, part.SexpString(nil))
			}
		}
		if mesh.IsEmpty() {
			return zygo.SexpNull, fmt.Errorf("object: %s: no faces", name)
		}
		obj.Mesh = mesh
		return &sexpObject{obj: obj}, nil
	},

	// (zone "office" (object ...) (object ...))
	"zone": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("zone requires a name argument")
		}
		name, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("zone: name: %w", err)
		}
		col := b.sc.Collection(name)
		for i, part := range flatten(args[1:]) {
			o, ok := part.(*sexpObject)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("zone: %s: child %d: expected object, got %T (%s)",
					name, i+1, part, part.SexpString(nil))
			}
			col.Objects = append(col.Objects, o.obj)
		}
		return &zygo.SexpStr{S: col.ZoneName()}, nil
	},
}
