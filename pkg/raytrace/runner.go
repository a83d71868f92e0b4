// Package raytrace drives the external lighting simulation tools. Point
// descriptors are fed to a ray tracer in fixed-size batches on standard
// input and the numeric rows it prints are collected in point order.
// Cancellation is cooperative: a shared Progress is polled after every
// batch.
package raytrace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultBatchPerCPU is the number of points sent per batch for each
// available processor.
const DefaultBatchPerCPU = 500

// ErrCancelled is returned when a run stops before every batch finished,
// either because its Progress was cancelled or because a tool reported an
// error.
var ErrCancelled = errors.New("raytrace: cancelled")

// ProcessError carries the diagnostics a tool printed on standard error.
// It matches ErrCancelled.
type ProcessError struct {
	Command string
	Stderr  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("raytrace: %s: %s", e.Command, strings.TrimSpace(e.Stderr))
}

func (e *ProcessError) Unwrap() error { return ErrCancelled }

// ExecFunc runs name with args, feeding stdin, and returns what the process
// wrote to its standard output and standard error.
type ExecFunc func(ctx context.Context, name string, args []string, stdin string) (stdout, stderr string, err error)

// Exec runs a child process and waits for it to exit.
func Exec(ctx context.Context, name string, args []string, stdin string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.String(), errOut.String(), err
}

// Progress counts processed points and carries the cancel flag shared with
// whoever started the run.
type Progress struct {
	mu        sync.Mutex
	total     int
	done      int
	cancelled bool
}

// NewProgress returns a Progress expecting total points.
func NewProgress(total int) *Progress {
	return &Progress{total: total}
}

// Add records n more processed points.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	p.done += n
	p.mu.Unlock()
}

// Cancel asks the run to stop after the current batch.
func (p *Progress) Cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
}

// Cancelled reports whether Cancel was called.
func (p *Progress) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Done returns the processed and expected point counts.
func (p *Progress) Done() (done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.total
}

// Runner feeds point batches to one tool invocation per batch.
type Runner struct {
	// Command is the tool and its arguments, e.g. rtrace -n 4 -fac scene.oct.
	Command   []string
	BatchSize int
	Exec      ExecFunc
	Log       *zap.Logger
}

// NewRunner returns a Runner whose batches hold batchPerCPU points per
// processor. A non-positive batchPerCPU uses DefaultBatchPerCPU.
func NewRunner(command []string, batchPerCPU int, log *zap.Logger) *Runner {
	if batchPerCPU <= 0 {
		batchPerCPU = DefaultBatchPerCPU
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Command:   command,
		BatchSize: runtime.NumCPU() * batchPerCPU,
		Exec:      Exec,
		Log:       log,
	}
}

// Run traces points and returns one row of values per point, in input
// order. A nil progress is never cancelled.
func (r *Runner) Run(ctx context.Context, points []string, progress *Progress) ([][]float64, error) {
	if len(r.Command) == 0 {
		return nil, errors.New("raytrace: no command")
	}
	if progress == nil {
		progress = NewProgress(len(points))
	}
	size := r.BatchSize
	if size <= 0 {
		size = DefaultBatchPerCPU
	}
	name, args := r.Command[0], r.Command[1:]
	cmdline := strings.Join(r.Command, " ")
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("running ray tracer", zap.String("command", cmdline), zap.Int("points", len(points)))

	rows := make([][]float64, 0, len(points))
	for i, batch := range lo.Chunk(points, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stdout, stderr, err := r.Exec(ctx, name, args, strings.Join(batch, "\n"))
		if stderr != "" {
			log.Error("ray tracer failed", zap.String("command", cmdline), zap.Int("batch", i), zap.String("stderr", stderr))
			progress.Cancel()
			return nil, &ProcessError{Command: cmdline, Stderr: stderr}
		}
		if err != nil {
			return nil, fmt.Errorf("raytrace: %s: %w", cmdline, err)
		}
		got, err := ParseRows(stdout)
		if err != nil {
			return nil, fmt.Errorf("raytrace: batch %d: %w", i, err)
		}
		if len(got) != len(batch) {
			return nil, fmt.Errorf("raytrace: batch %d: %d rows for %d points", i, len(got), len(batch))
		}
		rows = append(rows, got...)

		progress.Add(len(batch))
		if progress.Cancelled() {
			return nil, ErrCancelled
		}
	}
	return rows, nil
}

// ParseRows splits tool output into rows of whitespace or tab separated
// numbers. Blank lines are skipped.
func ParseRows(out string) ([][]float64, error) {
	var rows [][]float64
	for n, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
