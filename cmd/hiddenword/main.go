// Command hiddenword packs shapes around a word and writes the result as PNG
// or JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kyiku/hiddenword-back/internal/config"
	"github.com/kyiku/hiddenword-back/internal/depth"
	"github.com/kyiku/hiddenword-back/internal/geometry"
	"github.com/kyiku/hiddenword-back/internal/glyph"
	"github.com/kyiku/hiddenword-back/internal/palette"
	"github.com/kyiku/hiddenword-back/internal/placement"
	"github.com/kyiku/hiddenword-back/internal/render"
	"github.com/kyiku/hiddenword-back/internal/scene"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var (
		output     string
		asJSON     bool
		letters    bool
		debug      bool
		verbose    bool
		showHelp   bool
		shapeTypes string
		colorMode  string
		shapeColor string
		background string
		gradient   string
		parallax   string
		offsetX    float64
		offsetY    float64
	)

	fs := pflag.NewFlagSet("hiddenword", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&output, "output", "o", "hiddenword.png", "Output file, - for stdout")
	fs.BoolVar(&asJSON, "json", false, "Write the scene as JSON instead of PNG")
	fs.BoolVar(&letters, "letters", false, "Include letter polygons in JSON output")
	fs.BoolVar(&debug, "debug", false, "Draw letter polygons and boundary markers")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Log placement progress to stderr")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show help message")

	fs.StringVarP(&cfg.FontPath, "font", "f", cfg.FontPath, "Path to a TrueType/OpenType font (default: Go Regular)")
	fs.Float64Var(&cfg.SampleFactor, "sample-factor", cfg.SampleFactor, "Outline samples per unit")
	fs.Float64VarP(&cfg.FontSize, "font-size", "s", cfg.FontSize, "Font size")
	fs.Float64Var(&cfg.TextOffsetX, "x", cfg.TextOffsetX, "Baseline X of the first letter")
	fs.Float64Var(&cfg.TextOffsetY, "y", cfg.TextOffsetY, "Baseline Y")
	fs.Float64Var(&cfg.LetterSpacing, "spacing", cfg.LetterSpacing, "Extra space between letters")
	fs.Float64VarP(&cfg.CanvasWidth, "width", "W", cfg.CanvasWidth, "Canvas width")
	fs.Float64VarP(&cfg.CanvasHeight, "height", "H", cfg.CanvasHeight, "Canvas height")
	fs.IntVarP(&cfg.ShapeCount, "count", "n", cfg.ShapeCount, "Number of shapes")
	fs.Float64Var(&cfg.ShapeMinSize, "min-size", cfg.ShapeMinSize, "Minimum shape size")
	fs.Float64Var(&cfg.ShapeMaxSize, "max-size", cfg.ShapeMaxSize, "Maximum shape size (exclusive)")
	fs.IntVar(&cfg.MaxRetries, "retries", cfg.MaxRetries, "Attempts per shape before giving up")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 for time based")
	fs.StringVarP(&shapeTypes, "types", "t", joinTypes(cfg.ShapeTypes), "Comma separated shape types: "+joinTypes(placement.AllTypes))
	fs.StringVarP(&colorMode, "color-mode", "m", string(cfg.ColorMode), "single, random, disco or ishihara")
	fs.StringVarP(&shapeColor, "color", "c", palette.Hex(cfg.ShapeColor), "Shape color for the single mode")
	fs.StringVarP(&background, "background", "b", palette.Hex(cfg.BackgroundColor), "Background color")
	fs.StringVar(&gradient, "gradient", string(cfg.GradientMode), `Alpha by size: "no", "yes" or "yes, reversed"`)
	fs.StringVar(&parallax, "parallax", string(cfg.ParallaxMode), `Draw order: "no", "big shapes in front" or "small shapes in front"`)
	fs.Float64Var(&offsetX, "offset-x", 0, "Parallax pan X")
	fs.Float64Var(&offsetY, "offset-y", 0, "Parallax pan Y")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	if showHelp {
		printHelp(stderr, fs)
		return 0
	}

	if fs.NArg() > 0 {
		cfg.Word = strings.Join(fs.Args(), " ")
	}
	cfg.ShapeTypes = placement.ParseTypes(shapeTypes)
	if err := parseEnums(cfg, colorMode, shapeColor, background, gradient, parallax); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := slog.New(slog.DiscardHandler)
	if verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	glyphs, err := glyph.Load(cfg.FontPath, glyph.WithSampleFactor(cfg.SampleFactor), glyph.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Error loading font: %v\n", err)
		return 1
	}

	sc, err := scene.NewGenerator(glyphs, scene.WithLogger(logger)).Generate(context.Background(), cfg.Settings())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	w, closeOut, err := openOutput(output, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating output: %v\n", err)
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(sc.Document(scene.DocumentOptions{Letters: letters}))
	} else {
		opts := render.OptionsFor(sc)
		opts.Debug = debug
		opts.Offset = geometry.Pt(offsetX, offsetY)
		err = render.EncodePNG(w, sc, opts)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}

	fmt.Fprintf(stderr, "%s: placed %d of %d shapes (%s, seed %d)\n",
		cfg.Word, sc.Result.Placed, sc.Result.Requested, sc.Result.Status, sc.Seed)
	return 0
}

func parseEnums(cfg *config.Config, colorMode, shapeColor, background, gradient, parallax string) error {
	var err error
	if cfg.ColorMode, err = palette.ParseMode(colorMode); err != nil {
		return err
	}
	if cfg.ShapeColor, err = palette.ParseColor(shapeColor); err != nil {
		return err
	}
	if cfg.BackgroundColor, err = palette.ParseColor(background); err != nil {
		return err
	}
	if cfg.GradientMode, err = palette.ParseGradient(gradient); err != nil {
		return err
	}
	if cfg.ParallaxMode, err = depth.ParseOrder(parallax); err != nil {
		return err
	}
	return nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func joinTypes(types []placement.ShapeType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ",")
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: hiddenword [flags] <word>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Packs random shapes around a word so it shows up as negative space.")
	fmt.Fprintln(w, "Defaults come from the HW_* environment variables.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}
