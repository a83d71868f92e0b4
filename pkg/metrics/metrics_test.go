package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/envi/pkg/export"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ export.Metrics = (*Recorder)(nil)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.FrameExported(200 * time.Millisecond)
	r.FrameExported(time.Second)
	r.SurfaceEmitted("BuildingSurface:Detailed")
	r.SurfaceEmitted("BuildingSurface:Detailed")
	r.SurfaceEmitted("FenestrationSurface:Detailed")
	r.Warning("ambiguous-boundary")
	r.ExportError("fenestration-vertices")
	r.LinksDropped(0)
	r.LinksDropped(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.frames))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.surfaces.WithLabelValues("BuildingSurface:Detailed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.surfaces.WithLabelValues("FenestrationSurface:Detailed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.warnings.WithLabelValues("ambiguous-boundary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("fenestration-vertices")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.dropped))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.FrameExported(time.Millisecond)
	path := filepath.Join(t.TempDir(), "envi.prom")

	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "envi_frames_exported_total 1")
	assert.Contains(t, string(data), "envi_export_duration_seconds_count 1")

	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "envi.prom")))
}
