// flterrain is a CLI utility for working with Familyline terrain files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/familyline/flterrain/internal/config"
	"github.com/familyline/flterrain/internal/logger"
	"github.com/familyline/flterrain/pkg/formats"
	"github.com/familyline/flterrain/pkg/heightmap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "convert":
		err = cmdConvert(args)
	case "info":
		err = cmdInfo(args)
	case "verify":
		err = cmdVerify(args)
	case "export":
		err = cmdExport(args)
	case "preview":
		err = cmdPreview(args)
	case "generate", "gen":
		err = cmdGenerate(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, "Usage: flterrain "+string(ue))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`flterrain - Familyline terrain file utility

Usage:
  flterrain <command> [options]

Commands:
  convert  <image> <out.flte>          Convert a heightmap image to a terrain file
  info     <file.flte>                 Show terrain information
  verify   <file.flte>                 Check both checksums of a terrain file
  export   <file.flte> <out.png>       Export a terrain file as an RGBA heightmap
  preview  <file.flte> <out.png>       Render a grayscale or terrain type preview
  generate <out.flte>                  Generate a terrain from Perlin noise

Common options:
  -config <path>    Config file (default ./flterrain.yaml)
  -debug            Enable debug logging
  -log-file <path>  Also write logs to this file
  -save-config <path>
                    Write the effective config to a file

Examples:
  flterrain convert -name "Green Valley" -authors "Arthur M, Lena K" valley.png valley.flte
  flterrain info valley.flte
  flterrain preview -mode type -scale 8 valley.flte valley-types.png
  flterrain generate -width 256 -height 256 -seed 7 islands.flte`)
}

// usageError carries the usage line of a command invoked with bad arguments.
type usageError string

func (e usageError) Error() string { return "usage: flterrain " + string(e) }

// setup parses args, loads the config and starts the logger.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	var flags config.Flags
	flags.Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	if flags.SaveConfig != "" {
		if err := cfg.SaveTo(flags.SaveConfig); err != nil {
			return nil, fmt.Errorf("saving config: %w", err)
		}
		logger.Info("saved config", zap.String("path", flags.SaveConfig))
	}
	return cfg, nil
}

func cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	name := fs.String("name", "", "Terrain name")
	authors := fs.String("authors", "", "Comma-separated author list")
	description := fs.String("description", "", `Terrain description (\n and \t are expanded)`)

	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 2 {
		return usageError("convert [-name N] [-authors A] [-description D] <image> <out.flte>")
	}
	in, out := fs.Arg(0), fs.Arg(1)

	img, format, err := heightmap.LoadImage(in)
	if err != nil {
		return err
	}
	b := img.Bounds()
	logger.Info("loaded heightmap",
		zap.String("path", in),
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))

	if cfg.Terrain.WarnNonSquare && b.Dx() != b.Dy() {
		logger.Warn("heightmap is not square", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	}

	t, err := heightmap.TerrainFromImage(img)
	if err != nil {
		return fmt.Errorf("converting %s: %w", in, err)
	}

	if *name != "" {
		t.SetName(formats.NormalizeText(*name))
	}
	if *authors != "" {
		t.Authors = formats.ParseAuthors(*authors)
	} else {
		t.Authors = defaultAuthors(cfg)
	}
	t.Description = formats.NormalizeText(*description)

	if _, hi := t.GetAltitudeRange(); hi > cfg.Terrain.HeightSoftCapCM {
		logger.Warn("terrain exceeds height soft cap",
			zap.Uint16("max_height_cm", hi),
			zap.Uint16("soft_cap_cm", cfg.Terrain.HeightSoftCapCM))
	}

	return writeTerrain(out, t)
}

func defaultAuthors(cfg *config.Config) []string {
	var authors []string
	for _, a := range cfg.Terrain.DefaultAuthors {
		if a != "" {
			authors = append(authors, formats.NormalizeText(a))
		}
	}
	return authors
}

// writeTerrain writes t to path and logs the checksums read back from disk.
func writeTerrain(path string, t *formats.Terrain) error {
	if err := formats.WriteTerrainFile(path, formats.NewTerrainFile(t)); err != nil {
		return err
	}

	tf, err := formats.ReadTerrainFile(path)
	if err != nil {
		return fmt.Errorf("reading back %s: %w", path, err)
	}
	logger.Info("wrote terrain file",
		zap.String("path", path),
		zap.Uint32("width", t.Width),
		zap.Uint32("height", t.Height),
		zap.Uint32("size", tf.Layout.End()),
		zap.String("file_crc", fmt.Sprintf("0x%08x", tf.Checksums.File)),
		zap.String("terrain_crc", fmt.Sprintf("0x%08x", tf.Checksums.Terrain)))
	return nil
}

// loadTerrain reads a terrain file. A checksum mismatch is logged and the
// decoded file is still returned.
func loadTerrain(path string) (*formats.TerrainFile, error) {
	tf, err := formats.ReadTerrainFile(path)
	if err != nil {
		if tf == nil {
			return nil, err
		}
		logger.Warn("terrain file checksum mismatch", zap.String("path", path), zap.Error(err))
	}
	logger.Debug("loaded terrain file",
		zap.String("path", path),
		zap.Uint32("version", tf.Version),
		zap.Uint32("width", tf.Terrain.Width),
		zap.Uint32("height", tf.Terrain.Height))
	return tf, nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	if _, err := setup(fs, args); err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 1 {
		return usageError("info <file.flte>")
	}

	tf, err := loadTerrain(fs.Arg(0))
	if err != nil {
		return err
	}
	printInfo(fs.Arg(0), tf)
	return nil
}

func printInfo(path string, tf *formats.TerrainFile) {
	t := tf.Terrain

	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Version:     %d\n", tf.Version)
	fmt.Printf("Size:        %dx%d (%d cells)\n", t.Width, t.Height, len(t.Cells))
	if t.Name != nil {
		fmt.Printf("Name:        %s\n", *t.Name)
	}
	if len(t.Authors) > 0 {
		fmt.Printf("Authors:     %s\n", formats.FormatAuthors(t.Authors))
	}
	if t.Description != "" {
		fmt.Printf("Description: %s\n", t.Description)
	}

	lo, hi := t.GetAltitudeRange()
	fmt.Printf("Altitude:    %.2f m .. %.2f m\n",
		formats.TerrainCell{Height: lo}.HeightMeters(),
		formats.TerrainCell{Height: hi}.HeightMeters())
	fmt.Printf("Checksums:   file 0x%08x, terrain 0x%08x\n", tf.Checksums.File, tf.Checksums.Terrain)

	fmt.Println()
	fmt.Println("Blocks:")
	for _, lb := range tf.Layout.Blocks() {
		if lb.Block == nil {
			fmt.Printf("  %-12s absent\n", lb.Name)
			continue
		}
		fmt.Printf("  %-12s @%-8d %d bytes\n", lb.Name, lb.Block.Offset, lb.Block.Size)
	}

	counts := t.CountByType()
	types := make([]formats.TerrainType, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool {
		return counts[types[i]] > counts[types[j]]
	})

	fmt.Println()
	fmt.Println("Cells by type:")
	for _, typ := range types {
		fmt.Printf("  %-12s %d\n", typ, counts[typ])
	}
}

func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	if _, err := setup(fs, args); err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 1 {
		return usageError("verify <file.flte>")
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading terrain file: %w", err)
	}
	sums, err := formats.VerifyTerrainChecksums(data)
	if errors.Is(err, formats.ErrChecksumMismatch) {
		logger.Error("checksum verification failed",
			zap.String("path", path),
			zap.String("stored_file_crc", fmt.Sprintf("0x%08x", sums.File)),
			zap.String("stored_terrain_crc", fmt.Sprintf("0x%08x", sums.Terrain)),
			zap.Errors("mismatches", multierr.Errors(err)))
		return fmt.Errorf("%s: %w", path, formats.ErrChecksumMismatch)
	}
	if err != nil {
		return err
	}

	logger.Info("checksums ok",
		zap.String("path", path),
		zap.String("file_crc", fmt.Sprintf("0x%08x", sums.File)),
		zap.String("terrain_crc", fmt.Sprintf("0x%08x", sums.Terrain)))
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	if _, err := setup(fs, args); err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 2 {
		return usageError("export <file.flte> <out.png>")
	}

	tf, err := loadTerrain(fs.Arg(0))
	if err != nil {
		return err
	}
	return savePNG(fs.Arg(1), heightmap.TerrainToImage(tf.Terrain))
}

func cmdPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	scale := fs.Int("scale", 0, "Pixels per cell (default from config)")
	mode := fs.String("mode", "", `Preview mode, "height" or "type" (default from config)`)

	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 2 {
		return usageError("preview [-scale N] [-mode height|type] <file.flte> <out.png>")
	}
	if *scale <= 0 {
		*scale = cfg.Preview.Scale
	}
	if *mode == "" {
		*mode = cfg.Preview.Mode
	}

	tf, err := loadTerrain(fs.Arg(0))
	if err != nil {
		return err
	}

	var img image.Image
	switch *mode {
	case "height":
		img = heightmap.HeightPreview(tf.Terrain, *scale)
	case "type":
		img = heightmap.TypePreview(tf.Terrain, *scale)
	default:
		return fmt.Errorf("unknown preview mode %q", *mode)
	}
	return savePNG(fs.Arg(1), img)
}

func savePNG(path string, img image.Image) error {
	if err := heightmap.SavePNG(path, img); err != nil {
		return err
	}
	b := img.Bounds()
	logger.Info("wrote image", zap.String("path", path), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return nil
}

func cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	width := fs.Uint("width", 0, "Terrain width in cells (default from config)")
	height := fs.Uint("height", 0, "Terrain height in cells (default from config)")
	seed := fs.Int64("seed", 0, "Noise seed (default from config)")
	name := fs.String("name", "", "Terrain name")
	authors := fs.String("authors", "", "Comma-separated author list")

	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 1 {
		return usageError("generate [-width W] [-height H] [-seed S] [-name N] <out.flte>")
	}

	opts := generateOptions(cfg.Generate)
	if *width > 0 {
		opts.Width = uint32(*width)
	}
	if *height > 0 {
		opts.Height = uint32(*height)
	}
	if *seed != 0 {
		opts.Seed = *seed
	}

	logger.Debug("generating terrain",
		zap.Uint32("width", opts.Width),
		zap.Uint32("height", opts.Height),
		zap.Int64("seed", opts.Seed),
		zap.Int32("octaves", opts.Octaves))

	t, err := heightmap.Generate(opts)
	if err != nil {
		return err
	}
	if *name != "" {
		t.SetName(formats.NormalizeText(*name))
	}
	if *authors != "" {
		t.Authors = formats.ParseAuthors(*authors)
	} else {
		t.Authors = defaultAuthors(cfg)
	}

	return writeTerrain(fs.Arg(0), t)
}

// generateOptions maps the generate config section onto noise options.
func generateOptions(c config.GenerateConfig) heightmap.GenerateOptions {
	return heightmap.GenerateOptions{
		Width:         c.Width,
		Height:        c.Height,
		Seed:          c.Seed,
		Alpha:         c.Alpha,
		Beta:          c.Beta,
		Octaves:       c.Octaves,
		Frequency:     c.Frequency,
		MaxHeight:     c.MaxHeightCM,
		WaterLevel:    c.WaterLevel,
		MountainLevel: c.MountainLevel,
	}
}
