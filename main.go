// Command envi exports scene scripts to EnergyPlus input files.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chazu/envi/pkg/config"
	"github.com/chazu/envi/pkg/logging"
	"github.com/chazu/envi/pkg/raytrace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	config   string
	workdir  string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:          "envi",
		Short:        "Export scene scripts to EnergyPlus input files",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&g.config, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVarP(&g.workdir, "workdir", "w", "", "output directory (overrides configuration)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (overrides configuration)")

	root.AddCommand(
		newExportCmd(&g),
		newCheckCmd(&g),
		newPreviewCmd(&g),
		newRaytraceCmd(&g),
	)
	return root
}

// setup loads the configuration and builds the App.
func setup(g *globalFlags) (*App, *zap.Logger, error) {
	cfg, err := config.Load(g.config)
	if err != nil {
		return nil, nil, err
	}
	if g.workdir != "" {
		cfg.Workdir = g.workdir
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	return NewApp(cfg, log), log, nil
}

// readSource reads a script from path, or from standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func newExportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <script>",
		Short: "Write one input file per frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, log, err := setup(g)
			if err != nil {
				return err
			}
			defer log.Sync()

			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()

			results, err := app.Export(ctx, src)
			for _, r := range results {
				line := fmt.Sprintf("frame %d: %s (floor area %.2f m2, %d warnings)", r.Frame, r.Path, r.FloorArea, len(r.Warnings))
				if r.Expanded {
					line += " expanded"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return err
		},
	}
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	var stlDir string
	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Validate every frame without writing input files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, log, err := setup(g)
			if err != nil {
				return err
			}
			defer log.Sync()

			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()

			warnings, err := app.Check(ctx, src, stlDir)
			for _, w := range warnings {
				fmt.Fprintln(cmd.OutOrStdout(), w.String())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d warnings\n", len(warnings))
			return nil
		},
	}
	cmd.Flags().StringVar(&stlDir, "stl", "", "save each zone's triangulated geometry as STL into this directory")
	return cmd
}

func newPreviewCmd(g *globalFlags) *cobra.Command {
	var (
		frame  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "preview <script>",
		Short: "Draw an SVG plan of one frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, log, err := setup(g)
			if err != nil {
				return err
			}
			defer log.Sync()

			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return app.Preview(w, src, frame)
		},
	}
	cmd.Flags().IntVarP(&frame, "frame", "f", 0, "frame to draw")
	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG file (default standard output)")
	return cmd
}

func newRaytraceCmd(g *globalFlags) *cobra.Command {
	var (
		points string
		unit   string
	)
	cmd := &cobra.Command{
		Use:   "raytrace --points <file> -- <command> [args...]",
		Short: "Trace sensor points in batches and reduce the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, log, err := setup(g)
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Open(points)
			if err != nil {
				return err
			}
			defer f.Close()
			var records []string
			sc := bufio.NewScanner(f)
			for sc.Scan() {
				if line := strings.TrimSpace(sc.Text()); line != "" {
					records = append(records, line)
				}
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read %s: %w", points, err)
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()
			progress := raytrace.NewProgress(len(records))
			go func() {
				<-ctx.Done()
				progress.Cancel()
			}()

			vals, sum, err := app.Raytrace(ctx, args, records, unit, progress)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range vals {
				fmt.Fprintf(out, "%.3f\n", v)
			}
			fmt.Fprintf(out, "# min %.3f max %.3f mean %.3f\n", sum.Min, sum.Max, sum.Mean)
			return nil
		},
	}
	cmd.Flags().StringVarP(&points, "points", "p", "", "file of point records, one per line")
	cmd.Flags().StringVarP(&unit, "unit", "u", "lux", "result unit: lux, df or irradiance")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}
