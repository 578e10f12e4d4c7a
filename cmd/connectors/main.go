package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gekko3d/connectors"
	"github.com/gekko3d/connectors/pathgeom"
	"github.com/spf13/cobra"
)

var (
	configFile string
	seed       int64
	logFile    string
	debug      bool

	frames      int
	dt          float64
	outFile     string
	clickEvery  int
	render      bool
	width       int
	height      int
	pngFile     string
	restoreFile string

	svgFile string
)

// main registers the commands; without a subcommand the scene runs in the
// terminal.
func main() {
	rootCmd := &cobra.Command{
		Use:          "connectors",
		Short:        "bodies tumbling toward the centre, drawn in the terminal",
		RunE:         runInteractive,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", connectors.DefaultSeed, "random seed for body placement")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug lines")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run the scene headless with a fixed time step",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVar(&frames, "frames", 300, "number of frames")
	simulateCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "frame delta in seconds")
	simulateCmd.Flags().StringVar(&outFile, "out", "", "write a JSON snapshot of the final frame")
	simulateCmd.Flags().IntVar(&clickEvery, "click-every", 0, "advance the palette every N frames")
	simulateCmd.Flags().BoolVar(&render, "render", false, "render every frame")
	simulateCmd.Flags().IntVar(&width, "width", 80, "render width in pixels")
	simulateCmd.Flags().IntVar(&height, "height", 48, "render height in pixels")
	simulateCmd.Flags().StringVar(&pngFile, "png", "", "save the last rendered frame as PNG (implies --render)")
	simulateCmd.Flags().StringVar(&restoreFile, "restore", "", "start from a JSON snapshot")

	meshCmd := &cobra.Command{
		Use:   "mesh",
		Short: "build the logo mesh and print its statistics",
		Args:  cobra.NoArgs,
		RunE:  runMesh,
	}
	meshCmd.Flags().StringVar(&svgFile, "svg", "", "build from this SVG instead of the logo")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}

	rootCmd.AddCommand(simulateCmd, meshCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*connectors.Config, error) {
	cfg := connectors.DefaultConfig()
	if configFile != "" {
		loaded, err := connectors.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if debug {
		cfg.Log.Debug = true
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openLog(cfg *connectors.Config) (io.Writer, func(), error) {
	if cfg.Log.File == "" {
		return nil, func() {}, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logOut, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	term, err := connectors.NewTerminal(nil)
	if err != nil {
		return err
	}
	defer term.Close()

	app := connectors.NewScene(cfg, connectors.SceneOptions{
		Presenter: term,
		Log:       logOut,
		Modules:   []connectors.Module{connectors.TerminalModule{Terminal: term}},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", dt)
	}
	logOut, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := connectors.SceneOptions{
		Log:   logOut,
		Fixed: time.Duration(dt * float64(time.Second)),
	}
	var presenter *connectors.HeadlessPresenter
	if render || pngFile != "" {
		presenter = &connectors.HeadlessPresenter{Width: width, Height: height}
		opts.Presenter = presenter
	}

	app := connectors.NewScene(cfg, opts)
	defer app.Close()

	palette, _ := connectors.Resource[connectors.Palette](app)
	composer, _ := connectors.Resource[connectors.Composer](app)
	clock, _ := connectors.Resource[connectors.Time](app)
	if server, ok := connectors.Resource[connectors.AssetServer](app); ok {
		server.Wait()
	}

	app.Step()
	if restoreFile != "" {
		snap, err := connectors.LoadSnapshot(restoreFile)
		if err != nil {
			return err
		}
		if _, err := connectors.RestoreSnapshot(app.Commands(), composer, palette, snap); err != nil {
			return err
		}
		app.FlushCommands()
	}

	for i := 1; i < frames && !app.Done(); i++ {
		if clickEvery > 0 && i%clickEvery == 0 {
			palette.Advance()
		}
		app.Step()
	}

	snap := connectors.CaptureSnapshot(app.Commands(), clock, palette)
	printSnapshot(cmd.OutOrStdout(), snap)

	if outFile != "" {
		if err := connectors.SaveSnapshot(outFile, snap); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	if pngFile != "" && presenter.Last != nil {
		f, err := os.Create(pngFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := png.Encode(f, presenter.Last); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}
	return nil
}

func printSnapshot(out io.Writer, snap connectors.Snapshot) {
	fmt.Fprintf(out, "frame %d  t=%.2fs  accent %d (%s, %s layout)\n\n",
		snap.Frame, snap.Elapsed, snap.AccentIndex, snap.Accent, snap.Layout)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tCOLOR\tPOSITION\t|V|\tMESH")
	for _, b := range snap.Bodies {
		fmt.Fprintf(w, "%d\t%s\t%s\t(%6.2f %6.2f %6.2f)\t%.3f\t%s\n",
			b.Index, b.Kind, b.Color, b.Position.X(), b.Position.Y(), b.Position.Z(), b.Velocity.Len(), b.Geometry)
	}
	w.Flush()

	fmt.Fprintf(out, "\nmean distance %.3f  max speed %.3f  pointer (%.2f %.2f %.2f)\n",
		snap.MeanDistance(), snap.MaxSpeed(), snap.Pointer.X(), snap.Pointer.Y(), snap.Pointer.Z())
}

func runMesh(cmd *cobra.Command, args []string) error {
	source := connectors.LogoSVG
	if svgFile != "" {
		data, err := os.ReadFile(svgFile)
		if err != nil {
			return err
		}
		source = string(data)
	}

	server := connectors.NewAssetServer(nil)
	id, err := server.Precompute(source, connectors.DefaultLogoOptions())
	if err != nil {
		return fmt.Errorf("build mesh: %w", err)
	}
	asset, _ := server.Geometry(id)
	printStats(cmd.OutOrStdout(), asset.Stats, asset.Mesh)
	return nil
}

func printStats(out io.Writer, s pathgeom.Stats, mesh *pathgeom.Mesh) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "paths\t%d\n", s.Paths)
	fmt.Fprintf(w, "shapes\t%d\n", s.Shapes)
	fmt.Fprintf(w, "holes\t%d\n", s.Holes)
	fmt.Fprintf(w, "vertices\t%d\n", s.Vertices)
	fmt.Fprintf(w, "triangles\t%d\n", s.Triangles)
	fmt.Fprintf(w, "bounds\t(%.3f %.3f %.3f) .. (%.3f %.3f %.3f)\n",
		s.Min[0], s.Min[1], s.Min[2], s.Max[0], s.Max[1], s.Max[2])
	fmt.Fprintf(w, "radius\t%.3f\n", mesh.Radius())
	w.Flush()
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return connectors.WriteConfig(cmd.OutOrStdout(), cfg)
}
