package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tubegen/internal/config"
	"github.com/Faultbox/tubegen/internal/document"
	"github.com/Faultbox/tubegen/internal/logger"
	"github.com/Faultbox/tubegen/internal/watch"
	"github.com/Faultbox/tubegen/pkg/math"
	"github.com/Faultbox/tubegen/pkg/meshio"
	"github.com/Faultbox/tubegen/pkg/tube"
)

// stdout receives command reports.
var stdout io.Writer = os.Stdout

// parseArgs parses fs allowing flags after positional arguments, which the
// flag package stops at. It returns the positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// loadConfig loads the configuration for doc and sets up logging from it.
func loadConfig(flags *config.Flags, doc string) (*config.Config, error) {
	cfg, err := config.Load(flags, doc)
	if err != nil {
		return nil, err
	}

	lc := logger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: true,
	}
	if cfg.Logging.LogFile != "" {
		lc.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithConfig(lc); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	if src := cfg.Source(); src != "" {
		logger.Debug("config loaded", zap.String("path", src))
	}
	return cfg, nil
}

// loadTube reads and validates a document and returns a generator set up
// with its points and parameters.
func loadTube(path string, cfg *config.Config, flags *config.Flags) (*tube.Generator, string, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := doc.Validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	defaults, err := cfg.Params()
	if err != nil {
		return nil, "", fmt.Errorf("config: %w", err)
	}
	p, err := doc.Params(defaults)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	gen := tube.NewGenerator(flags.OverrideParams(p), logger.Named("tube"))
	gen.SetVertexLimit(cfg.Tube.VertexLimit)
	gen.SetPoints(doc.ControlPoints())

	name := doc.Name
	if name == "" {
		name = baseName(path)
	}
	return gen, name, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// outputFor returns where a mesh called name goes. An explicit path picks the
// format from its extension.
func outputFor(cfg *config.Config, explicit, name string) (string, meshio.Format, error) {
	if explicit != "" {
		format, err := meshio.FormatFromPath(explicit)
		return explicit, format, err
	}
	format, err := meshio.ParseFormat(cfg.Export.Format)
	if err != nil {
		return "", "", fmt.Errorf("export.format: %w", err)
	}
	return filepath.Join(cfg.Export.OutputDir, name+format.Ext()), format, nil
}

// writeMesh applies the configured export transform and writes m.
func writeMesh(cfg *config.Config, path string, m *tube.Mesh, format meshio.Format, name string) error {
	up, err := meshio.ParseUpAxis(cfg.Export.UpAxis)
	if err != nil {
		return fmt.Errorf("export.up_axis: %w", err)
	}
	xf, err := meshio.ExportTransform(up, cfg.Export.Scale)
	if err != nil {
		return fmt.Errorf("export.scale: %w", err)
	}
	if xf != math.Identity() {
		m = meshio.Transform(m, xf)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return meshio.WriteFile(path, m, format, name)
}

func printResult(res *tube.Result) {
	p := res.Params
	fmt.Fprintf(stdout, "  Mode:      %s (%s)\n", p.Mode, p.SplineMode)
	fmt.Fprintf(stdout, "  Samples:   %d\n", res.Samples)
	fmt.Fprintf(stdout, "  Sides:     %d\n", p.Sides)
	fmt.Fprintf(stdout, "  Radius:    %g\n", p.Radius)
	if p.HasThickness {
		fmt.Fprintf(stdout, "  Thickness: %g (%s)\n", p.Thickness, p.ShellType)
	}
	fmt.Fprintf(stdout, "  Vertices:  %d\n", res.Mesh.VertexCount())
	fmt.Fprintf(stdout, "  Triangles: %d\n", res.Mesh.TriangleCount())

	b := res.Mesh.Bounds()
	size := b.Size()
	fmt.Fprintf(stdout, "  Bounds:    %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)

	for _, c := range res.Corrections {
		fmt.Fprintf(stdout, "  Clamped:   %s\n", c)
	}
}

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	output := fs.String("o", "", "Output file (format from extension)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 1 {
		return errors.New("usage: tubegen build <doc.yaml> [-o mesh.obj]")
	}

	cfg, err := loadConfig(flags, pos[0])
	if err != nil {
		return err
	}
	defer logger.Sync()

	gen, name, err := loadTube(pos[0], cfg, flags)
	if err != nil {
		return err
	}
	res, err := gen.Rebuild()
	if err != nil {
		return err
	}

	path, format, err := outputFor(cfg, *output, name)
	if err != nil {
		return err
	}
	if err := writeMesh(cfg, path, res.Mesh, format, name); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s\n", path)
	printResult(res)
	return nil
}

func cmdLODs(args []string) error {
	fs := flag.NewFlagSet("lods", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	count := fs.Int("n", 0, "Number of LOD levels (0 = from document)")
	step := fs.Float64("step", 0, "Triangle budget step multiplier (0 = from document)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 1 {
		return errors.New("usage: tubegen lods <doc.yaml> [-n levels] [-step multiplier]")
	}

	cfg, err := loadConfig(flags, pos[0])
	if err != nil {
		return err
	}
	defer logger.Sync()

	gen, name, err := loadTube(pos[0], cfg, flags)
	if err != nil {
		return err
	}
	p := gen.Params()
	if *count > 0 {
		p.LODCount = *count
	}
	if *step > 0 {
		p.LODStep = float32(*step)
	}
	if p.LODCount <= 0 {
		return errors.New("no LOD levels requested (set lod.count or -n)")
	}
	gen.SetParams(p)

	res, err := gen.Rebuild()
	if err != nil {
		return err
	}
	lods, err := gen.BuildLODs()
	if err != nil {
		return err
	}

	path, format, err := outputFor(cfg, "", name)
	if err != nil {
		return err
	}
	if err := writeMesh(cfg, path, res.Mesh, format, name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s (%d sides, %d triangles)\n", path, lods.BaseSides, res.Mesh.TriangleCount())

	for _, l := range lods.Levels {
		lodName := name + "_" + l.Name()
		lodPath, lodFormat, err := outputFor(cfg, "", lodName)
		if err != nil {
			return fmt.Errorf("%s: %w", l.Name(), err)
		}
		if err := writeMesh(cfg, lodPath, l.Mesh, lodFormat, lodName); err != nil {
			return fmt.Errorf("%s: %w", l.Name(), err)
		}
		fmt.Fprintf(stdout, "Wrote %s (%d sides, %d triangles, target %d)\n",
			lodPath, l.Sides, l.Mesh.TriangleCount(), l.TargetTriangles)
	}
	for _, s := range lods.Skipped {
		fmt.Fprintf(stdout, "Skipped lod%d: %d triangles would need %d sides\n", s.Level, s.TargetTriangles, s.Sides)
	}
	if n := lods.Shortfall(); n > 0 {
		fmt.Fprintf(stdout, "%d of %d LOD levels skipped, triangle limit reached\n", n, p.LODCount)
	}
	return nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 1 {
		return errors.New("usage: tubegen info <doc.yaml|mesh.stl>")
	}
	path := pos[0]

	if strings.EqualFold(filepath.Ext(path), meshio.FormatSTL.Ext()) {
		return stlInfo(path)
	}

	cfg, err := loadConfig(flags, pos[0])
	if err != nil {
		return err
	}
	defer logger.Sync()

	gen, name, err := loadTube(path, cfg, flags)
	if err != nil {
		return err
	}
	res, err := gen.Rebuild()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Tube:      %s\n", name)
	fmt.Fprintf(stdout, "  Points:    %d\n", len(gen.Points()))
	printResult(res)

	if res.Params.LODCount == 0 {
		return nil
	}
	lods, err := gen.BuildLODs()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "LODs:")
	for _, l := range gen.LODInfo() {
		fmt.Fprintf(stdout, "  %-6s %3d sides %8d triangles\n", l.Name, l.Sides, l.Triangles)
	}
	for _, s := range lods.Skipped {
		fmt.Fprintf(stdout, "  lod%d   skipped\n", s.Level)
	}
	return nil
}

func stlInfo(path string) error {
	s, err := meshio.ReadSTLFile(path)
	if err != nil {
		return err
	}
	m := s.ToMesh()
	size := s.Bounds().Size()

	fmt.Fprintf(stdout, "Mesh:      %s\n", path)
	fmt.Fprintf(stdout, "  Header:    %q\n", s.Header)
	fmt.Fprintf(stdout, "  Triangles: %d\n", s.TriangleCount())
	fmt.Fprintf(stdout, "  Vertices:  %d (welded)\n", m.VertexCount())
	fmt.Fprintf(stdout, "  Bounds:    %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	return nil
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	output := fs.String("o", "", "Output file (format from extension)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 1 {
		return errors.New("usage: tubegen watch <doc.yaml> [-o mesh.obj]")
	}

	cfg, err := loadConfig(flags, pos[0])
	if err != nil {
		return err
	}
	defer logger.Sync()

	log := logger.Named("watch")
	rebuild := func(path string) error {
		gen, name, err := loadTube(path, cfg, flags)
		if err != nil {
			return err
		}
		res, err := gen.Rebuild()
		if err != nil {
			return err
		}
		out, format, err := outputFor(cfg, *output, name)
		if err != nil {
			return err
		}
		if err := writeMesh(cfg, out, res.Mesh, format, name); err != nil {
			return err
		}
		log.Info("mesh written",
			zap.String("path", out),
			zap.Int("sides", res.Params.Sides),
			zap.Int("triangles", res.Mesh.TriangleCount()))
		return nil
	}

	// A broken document is reported and fixed while watching.
	if err := rebuild(pos[0]); err != nil {
		log.Error("initial build failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch.New(pos[0], cfg.Watch.Debounce, rebuild, log).Run(ctx)
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	force := fs.Bool("f", false, "Overwrite an existing document")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 1 {
		return errors.New("usage: tubegen init <doc.yaml> [-f]")
	}
	path := pos[0]

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -f to overwrite)", path)
	}

	cfg, err := config.Load(flags, path)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	p = flags.OverrideParams(p)

	if err := document.New(baseName(path), tube.DefaultPoints(), p).Save(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	save := fs.Bool("save", false, "Save to the user config directory (or the given path)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	if !*save {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = stdout.Write(data)
		return err
	}

	path := ""
	if len(pos) > 0 {
		path = pos[0]
		err = cfg.SaveTo(path)
	} else {
		path, err = cfg.Save()
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
