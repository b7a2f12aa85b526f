// Command ipprasterctl encodes and decodes PWG Raster / Apple URF
// documents and speaks the IPP operations needed to validate and submit
// them to a printer, without going through any OS print spooler.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/WaffleThief123/ipprasterctl/internal/capabilities"
	"github.com/WaffleThief123/ipprasterctl/internal/ipp"
	"github.com/WaffleThief123/ipprasterctl/internal/ippclient"
	"github.com/WaffleThief123/ipprasterctl/internal/ippserver"
	"github.com/WaffleThief123/ipprasterctl/internal/media"
	"github.com/WaffleThief123/ipprasterctl/internal/raster"
	"github.com/WaffleThief123/ipprasterctl/internal/transport"
)

var (
	version = "dev"
	commit  = "unknown"
)

// ConfigFile is the optional YAML config file for the serve subcommand.
type ConfigFile struct {
	Listen string `yaml:"listen"`
	Printer struct {
		Name      string `yaml:"name"`
		MakeModel string `yaml:"make_model"`
		Location  string `yaml:"location"`
		Color     bool   `yaml:"color"`
		Duplex    bool   `yaml:"duplex"`
	} `yaml:"printer"`
	Media []struct {
		Printer      string   `yaml:"printer"`
		Profile      string   `yaml:"profile"`
		Sizes        []string `yaml:"sizes"`
		DefaultSize  string   `yaml:"default_size"`
	} `yaml:"media"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "encode":
		err = runEncode(args)
	case "decode":
		err = runDecode(args)
	case "validate-job":
		err = runValidateJob(args)
	case "print-job":
		err = runPrintJob(args)
	case "get-printer-attributes":
		err = runGetPrinterAttributes(args)
	case "get-job-attributes":
		err = runGetJobAttributes(args)
	case "serve":
		err = runServe(args)
	case "-version", "--version", "version":
		fmt.Printf("ipprasterctl version %s (commit %s)\n", version, commit)
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ipprasterctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ipprasterctl <command> [flags]

commands:
  encode <input.png> <output.urf|output.pwg>
  decode <input.urf|input.pwg> <output.png>
  validate-job -uri=<printer-uri> [-format=image/urf] [-name=job]
  print-job -uri=<printer-uri> -file=<path> [-format=image/urf] [-name=job]
  get-printer-attributes -uri=<printer-uri>
  get-job-attributes -uri=<printer-uri> -job-id=<id>
  serve [-listen=:8631] [-config=path.yaml]`)
}

// runEncode reads a PNG and writes it as a URF or PWG raster document,
// chosen by the output file's extension (raster.py's __main__ shape,
// but decoding PNG instead of relying on PIL).
func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("encode requires <input.png> <output>")
	}
	input, output := fs.Arg(0), fs.Arg(1)

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decode PNG: %w", err)
	}

	grid := gridFromImage(img)

	lowerOutput := strings.ToLower(output)
	var out []byte
	switch {
	case strings.HasSuffix(lowerOutput, ".pwg"), strings.HasSuffix(lowerOutput, ".ras"):
		out = raster.EncodePWG([]*raster.PWGHeader{defaultPWGHeader(grid)}, []*raster.PixelGrid{grid})
	default:
		out = raster.EncodeURF(defaultURFHeader(grid), []*raster.PixelGrid{grid})
	}

	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// runDecode autodetects a raster document's container format and writes
// its pixel data back out as a PNG.
func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("decode requires <input> <output.png>")
	}
	input, output := fs.Arg(0), fs.Arg(1)

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	format, _, _, pages, err := raster.Decode(data, input, func(w raster.Warning) {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Field, w.Message)
	})
	if err != nil {
		return fmt.Errorf("decode %s: %w", format, err)
	}
	if len(pages) > 1 {
		fmt.Fprintf(os.Stderr, "warning: input has %d pages, writing only the first to %s\n", len(pages), output)
	}

	img := imageFromGrid(pages[0])
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	return png.Encode(f, img)
}

func gridFromImage(img image.Image) *raster.PixelGrid {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	grid, err := raster.NewPixelGrid(width, height, 3)
	if err != nil {
		// dimensions came from a decoded PNG, so they're already valid;
		// this only trips on pathological 100+ megapixel source images.
		panic(err)
	}
	for y := 0; y < height; y++ {
		row := grid.Rows[y]
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			row[x*3+0] = byte(r >> 8)
			row[x*3+1] = byte(g >> 8)
			row[x*3+2] = byte(b >> 8)
		}
	}
	return grid
}

func imageFromGrid(grid *raster.PixelGrid) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		row := grid.Rows[y]
		for x := 0; x < grid.Width; x++ {
			switch grid.BytesPerPixel {
			case 1:
				v := row[x]
				img.Set(x, y, color.Gray{Y: v})
			case 4:
				img.Set(x, y, color.RGBA{R: row[x*4], G: row[x*4+1], B: row[x*4+2], A: row[x*4+3]})
			default:
				img.Set(x, y, color.RGBA{R: row[x*3], G: row[x*3+1], B: row[x*3+2], A: 255})
			}
		}
	}
	return img
}

func defaultURFHeader(grid *raster.PixelGrid) *raster.URFHeader {
	return &raster.URFHeader{
		Pages:      1,
		BPP:        24,
		ColorSpace: 1, // sRGB
		Duplex:     1, // simplex
		Quality:    0,
		PageWidth:  uint32(grid.Width),
		PageHeight: uint32(grid.Height),
		DPI:        300,
	}
}

func defaultPWGHeader(grid *raster.PixelGrid) *raster.PWGHeader {
	bytesPerLine := uint32((24*grid.Width + 7) / 8)
	return &raster.PWGHeader{
		PrintContentOptimize: "Auto",
		Duplex:               0,
		HWResolutionX:        300,
		HWResolutionY:        300,
		NumCopies:            1,
		PageSizeX:            uint32(grid.Width),
		PageSizeY:            uint32(grid.Height),
		Width:                uint32(grid.Width),
		Height:               uint32(grid.Height),
		BitsPerColor:         8,
		BitsPerPixel:         24,
		BytesPerLine:         bytesPerLine,
		ColorSpace:           19, // Srgb
		NumColors:            3,
		TotalPageCount:       1,
		PrintQuality:         4,
		RenderingIntent:      "Perceptual",
		PageSizeName:         "oe_4x6-label_4x6in",
	}
}

func runValidateJob(args []string) error {
	fs := flag.NewFlagSet("validate-job", flag.ExitOnError)
	uri := fs.String("uri", "", "printer URI")
	format := fs.String("format", "image/urf", "document-format")
	name := fs.String("name", "ipprasterctl job", "job-name")
	fs.Parse(args)
	if *uri == "" {
		return fmt.Errorf("-uri is required")
	}

	c := ippclient.New(*uri, transport.NewHTTPTransport(*uri))
	resp, err := c.ValidateJob(*format, *name)
	if err != nil {
		return err
	}
	fmt.Printf("status=%#x message=%q\n", resp.OperationOrStatus, ippclient.StatusMessage(resp))
	return nil
}

func runPrintJob(args []string) error {
	fs := flag.NewFlagSet("print-job", flag.ExitOnError)
	uri := fs.String("uri", "", "printer URI")
	file := fs.String("file", "", "raster document to print")
	format := fs.String("format", "image/urf", "document-format")
	name := fs.String("name", "ipprasterctl job", "job-name")
	fs.Parse(args)
	if *uri == "" || *file == "" {
		return fmt.Errorf("-uri and -file are required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	c := ippclient.New(*uri, transport.NewHTTPTransport(*uri))
	resp, err := c.PrintJob(*format, *name, data)
	if err != nil {
		return err
	}
	jobID, _ := ippclient.JobID(resp)
	fmt.Printf("status=%#x job-id=%d\n", resp.OperationOrStatus, jobID)
	return nil
}

func runGetPrinterAttributes(args []string) error {
	fs := flag.NewFlagSet("get-printer-attributes", flag.ExitOnError)
	uri := fs.String("uri", "", "printer URI")
	fs.Parse(args)
	if *uri == "" {
		return fmt.Errorf("-uri is required")
	}

	c := ippclient.New(*uri, transport.NewHTTPTransport(*uri))
	resp, err := c.GetPrinterAttributes()
	if err != nil {
		return err
	}

	caps := capabilities.FromGroup(resp.Group(ipp.TagPrinterAttrs))
	fmt.Printf("name:       %s\n", caps.Name)
	fmt.Printf("model:      %s\n", caps.MakeModel)
	fmt.Printf("location:   %s\n", caps.Location)
	fmt.Printf("color:      %v\n", caps.ColorSupported)
	fmt.Printf("duplex:     %v\n", caps.DuplexSupported)
	fmt.Printf("media:      %s\n", strings.Join(caps.MediaSupported, ", "))
	return nil
}

func runGetJobAttributes(args []string) error {
	fs := flag.NewFlagSet("get-job-attributes", flag.ExitOnError)
	uri := fs.String("uri", "", "printer URI")
	jobID := fs.Int("job-id", 0, "job-id")
	fs.Parse(args)
	if *uri == "" || *jobID == 0 {
		return fmt.Errorf("-uri and -job-id are required")
	}

	c := ippclient.New(*uri, transport.NewHTTPTransport(*uri))
	resp, err := c.GetJobAttributes(int32(*jobID))
	if err != nil {
		return err
	}
	fmt.Printf("status=%#x reasons=%v\n", resp.OperationOrStatus, ippclient.JobStateReasons(resp))
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", ":8631", "listen address")
	configPath := fs.String("config", "", "path to YAML config file")
	printerName := fs.String("printer-name", "ipprasterctl", "printer name")
	makeModel := fs.String("make-model", "Generic Label Printer", "printer-make-and-model")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "console", "log format: json, console")
	fs.Parse(args)

	printer := ippserver.PrinterConfig{
		Name:        *printerName,
		MakeModel:   *makeModel,
		Resolutions: []int{300, 600},
	}
	registry := media.NewRegistry()

	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg != nil {
			applyFileConfig(cfg, listen, &printer, registry, logLevel, logFormat)
			// Re-apply the command-line flags so they take precedence over the file.
			fs.Parse(args)
			fs.Visit(func(f *flag.Flag) {
				switch f.Name {
				case "printer-name":
					printer.Name = *printerName
				case "make-model":
					printer.MakeModel = *makeModel
				}
			})
		}
	}

	zerolog.SetGlobalLevel(parseLogLevel(*logLevel))
	var log zerolog.Logger
	if *logFormat == "json" {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}

	srv := ippserver.NewServer(*listen, printer, registry, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log.Info().Str("addr", *listen).Str("printer", printer.Name).Msg("ipprasterctl serve started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
		return nil
	}
}

func loadConfig(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func applyFileConfig(cfg *ConfigFile, listen *string, printer *ippserver.PrinterConfig, registry *media.Registry, logLevel, logFormat *string) {
	if cfg.Listen != "" {
		*listen = cfg.Listen
	}
	if cfg.Printer.Name != "" {
		printer.Name = cfg.Printer.Name
	}
	if cfg.Printer.MakeModel != "" {
		printer.MakeModel = cfg.Printer.MakeModel
	}
	printer.Location = cfg.Printer.Location
	printer.Color = cfg.Printer.Color
	printer.Duplex = cfg.Printer.Duplex

	if cfg.Log.Level != "" {
		*logLevel = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		*logFormat = cfg.Log.Format
	}

	var overrides []media.ConfigOverride
	for _, m := range cfg.Media {
		overrides = append(overrides, media.ConfigOverride{
			PrinterName:  m.Printer,
			ProfileName:  m.Profile,
			MediaSizes:   m.Sizes,
			DefaultMedia: m.DefaultSize,
		})
	}
	if len(overrides) > 0 {
		registry.ApplyConfigOverrides(overrides)
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
