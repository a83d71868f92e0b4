// Package export writes one EnergyPlus input file per frame. For each
// frame the scene's constructions are resolved, the geometry is
// canonicalized, the zone network is rebuilt and every section is written
// in a single pass into an in-memory document. Validation failures abort
// the frame before anything reaches the disk.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chazu/envi/pkg/boundary"
	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/construction"
	"github.com/chazu/envi/pkg/identity"
	"github.com/chazu/envi/pkg/idf"
	"github.com/chazu/envi/pkg/kernel"
	"github.com/chazu/envi/pkg/network"
	"github.com/chazu/envi/pkg/scene"
	"go.uber.org/zap"
)

// Metrics receives export counters.
type Metrics interface {
	FrameExported(d time.Duration)
	SurfaceEmitted(kind string)
	Warning(kind string)
	ExportError(kind string)
	LinksDropped(n int)
}

type nopMetrics struct{}

func (nopMetrics) FrameExported(time.Duration) {}
func (nopMetrics) SurfaceEmitted(string)       {}
func (nopMetrics) Warning(string)              {}
func (nopMetrics) ExportError(string)          {}
func (nopMetrics) LinksDropped(int)            {}

// Options configure an Exporter.
type Options struct {
	Workdir string
	// ExpandObjects is the HVAC template expander binary; empty disables
	// expansion.
	ExpandObjects string
	// IdentityFile persists face identities between runs when set.
	IdentityFile string
	// Boundary is the vertex tolerance for adjacent surface matching.
	Boundary float64
	Canon    canon.Options
}

// DefaultOptions returns options writing to workdir.
func DefaultOptions(workdir string) Options {
	return Options{
		Workdir:       workdir,
		ExpandObjects: "ExpandObjects",
		Boundary:      0.01,
		Canon:         canon.DefaultOptions(),
	}
}

// Result describes one written frame.
type Result struct {
	Frame     int
	Path      string
	Expanded  bool
	Warnings  []Warning
	FloorArea float64
}

// Exporter runs the per-frame pipeline.
type Exporter struct {
	opts     Options
	kernel   kernel.Kernel
	registry *identity.Registry
	builder  *network.Builder
	log      *zap.Logger
	metrics  Metrics

	// Expand runs the template expander in dir. Replaced in tests.
	Expand func(ctx context.Context, dir string) error
	// Now stamps document headers.
	Now func() time.Time
}

// New returns an Exporter. A nil registry starts empty, a nil logger and
// nil metrics disable those concerns.
func New(opts Options, k kernel.Kernel, reg *identity.Registry, log *zap.Logger, m Metrics) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = nopMetrics{}
	}
	if reg == nil {
		reg = identity.New()
	}
	e := &Exporter{
		opts:     opts,
		kernel:   k,
		registry: reg,
		builder:  network.NewBuilder(log.Named("network")),
		log:      log,
		metrics:  m,
		Now:      time.Now,
	}
	e.Expand = e.runExpandObjects
	return e
}

// Prepare resolves constructions, canonicalizes geometry and rebuilds the
// network for frame. The returned context is ready for ExportFrame.
func (e *Exporter) Prepare(sc *scene.Scene, frame int) (*Context, error) {
	ec := newContext(sc, frame, e.log, e.metrics)
	ec.Now = e.Now()

	cons := construction.NewSet(e.log.Named("construction"), ec)
	if err := cons.Load(sc); err != nil {
		return nil, e.abort(ec, "constructions", err)
	}
	ec.Constructions = cons

	cn := canon.New(e.kernel, e.registry, e.opts.Canon, e.log.Named("canon"), ec)
	zones, err := cn.Scene(sc, frame, cons)
	if err != nil {
		return nil, fmt.Errorf("export: frame %d: %w", frame, err)
	}
	ec.Zones = zones
	for _, z := range zones {
		if z.Kind.Thermal() {
			ec.FloorArea[z.Name] = z.FloorArea
			ec.TotalFloorArea += z.FloorArea
		}
	}

	ec.Rebuild = e.builder.Rebuild(sc.Network, network.Zones(zones, cons), sc.Links)
	e.metrics.LinksDropped(ec.Rebuild.Dropped)
	if err := network.CheckExportable(sc.Network); err != nil {
		return nil, e.abort(ec, "network", err)
	}
	return ec, nil
}

func (e *Exporter) abort(ec *Context, subject string, err error) error {
	sentinel := ErrBadConstruction
	if errors.Is(err, ErrBadNode) {
		sentinel = ErrBadNode
	}
	ec.fail(subject, sentinel, err.Error())
	return ec.Err()
}

// ExportFrame writes the document of a prepared frame. On any validation
// failure it returns every finding combined and no document.
func (e *Exporter) ExportFrame(ctx context.Context, ec *Context) ([]byte, error) {
	var doc idf.Document
	writers := []func(*Context, *idf.Document){
		writeHeader,
		writeMaterials,
		writeZones,
		e.writeSurfaces,
		writeSchedules,
		writeGenerators,
		writeLoads,
		writeAirflow,
		writeEMS,
		writeOutputs,
	}
	for _, w := range writers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w(ec, &doc)
	}
	if err := ec.Err(); err != nil {
		return nil, err
	}
	return doc.Bytes(), nil
}

// Run exports every frame of sc and returns what was written. Export stops
// at the first frame that fails.
func (e *Exporter) Run(ctx context.Context, sc *scene.Scene) ([]Result, error) {
	if err := os.MkdirAll(e.opts.Workdir, 0o755); err != nil {
		return nil, fmt.Errorf("export: workdir: %w", err)
	}

	var results []Result
	for _, frame := range sc.Frames() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		start := time.Now()

		ec, err := e.Prepare(sc, frame)
		if err != nil {
			return results, err
		}
		data, err := e.ExportFrame(ctx, ec)
		if err != nil {
			return results, err
		}

		path := filepath.Join(e.opts.Workdir, fmt.Sprintf("in%d.idf", frame))
		if err := writeAtomic(path, data); err != nil {
			return results, err
		}
		res := Result{Frame: frame, Path: path, Warnings: ec.Warnings, FloorArea: ec.TotalFloorArea}

		if ec.HVACTemplate && e.opts.ExpandObjects != "" {
			if err := e.expand(ctx, path); err != nil {
				return results, err
			}
			res.Expanded = true
		}

		e.metrics.FrameExported(time.Since(start))
		e.log.Info("frame exported",
			zap.Int("frame", frame),
			zap.String("path", path),
			zap.Int("zones", len(ec.Zones)),
			zap.Int("warnings", len(ec.Warnings)))
		results = append(results, res)
	}

	if e.opts.IdentityFile != "" {
		if err := e.registry.Save(e.opts.IdentityFile); err != nil {
			return results, fmt.Errorf("export: %w", err)
		}
	}
	return results, nil
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".envi-*.idf")
	if err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// expand runs the template expander over path. The expander reads in.idf
// from its working directory and writes expanded.idf, which replaces path.
func (e *Exporter) expand(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("export: expand: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "in.idf"), data); err != nil {
		return err
	}
	if err := e.Expand(ctx, dir); err != nil {
		return fmt.Errorf("export: expand %s: %w", path, err)
	}
	if err := os.Rename(filepath.Join(dir, "expanded.idf"), path); err != nil {
		return fmt.Errorf("export: expand %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) runExpandObjects(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, e.opts.ExpandObjects)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	out, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	msg, _ := io.ReadAll(out)
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return nil
}

// resolveBoundaries pairs every building surface of the thermal zones.
func (e *Exporter) resolveBoundaries(ec *Context) {
	r := boundary.NewResolver(e.opts.Boundary, e.log.Named("boundary"), ec)
	for _, z := range ec.Zones {
		if !z.Kind.Thermal() {
			continue
		}
		for i, f := range z.Faces {
			c := ec.Constructions.Get(f.Material)
			if c == nil || !(c.Kind.Opaque() || c.Kind.Fenestration()) {
				continue
			}
			r.Add(boundary.Surface{Name: z.SurfaceName(i), Zone: z.Name, Boundary: c.Boundary, Points: z.Mesh.FaceVerts(i)})
		}
	}
	for _, p := range network.BoundaryPairs(ec.Network) {
		if err := r.Pair(p.A, p.B); err != nil {
			ec.Warn(boundary.WarnNoPartner, p.A, err.Error())
		}
	}
	ec.Conditions = r.Resolve()
}
