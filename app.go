package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/envi/pkg/config"
	"github.com/chazu/envi/pkg/engine"
	"github.com/chazu/envi/pkg/export"
	"github.com/chazu/envi/pkg/identity"
	"github.com/chazu/envi/pkg/kernel/sdfx"
	"github.com/chazu/envi/pkg/metrics"
	"github.com/chazu/envi/pkg/preview"
	"github.com/chazu/envi/pkg/raytrace"
	"github.com/chazu/envi/pkg/scene"
	"go.uber.org/zap"
)

// ScriptError reports the errors found while evaluating a scene script.
type ScriptError struct {
	Errors []engine.EvalError
}

func (e *ScriptError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ee := range e.Errors {
		msgs[i] = ee.Error()
	}
	return "script: " + strings.Join(msgs, "; ")
}

// App ties the scene engine to the exporter and its side tools.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	engine  *engine.Engine
	kernel  *sdfx.SdfxKernel
	metrics *metrics.Recorder
	// rayExec runs the ray tracing tools.
	rayExec raytrace.ExecFunc
}

// NewApp creates an App with an engine and the sdfx kernel.
func NewApp(cfg config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	eng := engine.NewEngine()
	eng.EPVersion = cfg.EPVersion
	return &App{
		cfg:     cfg,
		log:     log,
		engine:  eng,
		kernel:  sdfx.New(),
		metrics: metrics.New(),
		rayExec: raytrace.Exec,
	}
}

// Load evaluates a scene script.
func (a *App) Load(source string) (*scene.Scene, error) {
	sc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluation failed", zap.Error(err))
		return nil, err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			a.log.Warn("script error", zap.Int("line", e.Line), zap.String("message", e.Message))
		}
		return nil, &ScriptError{Errors: evalErrs}
	}
	return sc, nil
}

// exporter returns an exporter sharing the persisted face identities.
func (a *App) exporter() (*export.Exporter, error) {
	opts := a.cfg.Export()
	reg, err := identity.Load(opts.IdentityFile)
	if err != nil {
		return nil, err
	}
	return export.New(opts, a.kernel, reg, a.log.Named("export"), a.metrics), nil
}

// Export evaluates source and writes one input file per frame into the
// working directory.
func (a *App) Export(ctx context.Context, source string) ([]export.Result, error) {
	sc, err := a.Load(source)
	if err != nil {
		return nil, err
	}
	e, err := a.exporter()
	if err != nil {
		return nil, err
	}
	results, err := e.Run(ctx, sc)
	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			a.log.Warn("metrics not written", zap.String("path", path), zap.Error(werr))
		}
	}
	return results, err
}

// Check runs every frame through the exporter without writing files and
// returns the findings. When stlDir is set each zone's triangulated
// geometry is saved there as <frame>_<zone>.stl.
func (a *App) Check(ctx context.Context, source, stlDir string) ([]export.Warning, error) {
	sc, err := a.Load(source)
	if err != nil {
		return nil, err
	}
	e, err := a.exporter()
	if err != nil {
		return nil, err
	}
	var warnings []export.Warning
	for _, frame := range sc.Frames() {
		ec, err := e.Prepare(sc, frame)
		if err != nil {
			return warnings, err
		}
		if _, err := e.ExportFrame(ctx, ec); err != nil {
			return warnings, err
		}
		warnings = append(warnings, ec.Warnings...)
		if stlDir != "" {
			if err := a.dumpZones(ec, stlDir); err != nil {
				return warnings, err
			}
		}
	}
	return warnings, nil
}

func (a *App) dumpZones(ec *export.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	for _, z := range ec.Zones {
		tris, err := a.kernel.Triangulate(z.Mesh)
		if err != nil {
			return fmt.Errorf("stl: %s: %w", z.Name, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%d_%s.stl", ec.Frame, z.Name))
		if err := a.kernel.SaveSTL(path, tris); err != nil {
			return err
		}
		a.log.Debug("zone saved", zap.String("zone", z.Name), zap.String("path", path))
	}
	return nil
}

// Preview writes an SVG plan of frame to w.
func (a *App) Preview(w io.Writer, source string, frame int) error {
	sc, err := a.Load(source)
	if err != nil {
		return err
	}
	e, err := a.exporter()
	if err != nil {
		return err
	}
	ec, err := e.Prepare(sc, frame)
	if err != nil {
		return err
	}
	return preview.Plan(w, ec.Zones, preview.SetPalette(ec.Constructions), a.cfg.Preview.Scale)
}

// Raytrace feeds point records to command in batches and returns the
// results reduced to unit ("lux", "df" or "irradiance").
func (a *App) Raytrace(ctx context.Context, command, points []string, unit string, progress *raytrace.Progress) ([]float64, raytrace.Summary, error) {
	reduce := map[string]func([][]float64) ([]float64, error){
		"lux":        raytrace.Illuminance,
		"df":         raytrace.DaylightFactor,
		"irradiance": raytrace.Irradiance,
	}[unit]
	if reduce == nil {
		return nil, raytrace.Summary{}, fmt.Errorf("raytrace: unknown unit %q", unit)
	}
	r := raytrace.NewRunner(command, a.cfg.Raytrace.BatchPerCPU, a.log.Named("raytrace"))
	r.Exec = a.rayExec
	rows, err := r.Run(ctx, points, progress)
	if err != nil {
		return nil, raytrace.Summary{}, err
	}
	vals, err := reduce(rows)
	if err != nil {
		return nil, raytrace.Summary{}, err
	}
	return vals, raytrace.Summarize(vals), nil
}
