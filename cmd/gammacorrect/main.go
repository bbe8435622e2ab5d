// Command gammacorrect applies gamma correction to image files.
//
// Usage:
//
//	gammacorrect [flags] input...
//
// With -gamma auto (the default) the exponent is taken from the gAMA chunk
// of each PNG input; files without a significant gamma are skipped.
// Results are written next to the inputs with a suffix, or to -o when a
// single input is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/gamma"
	"github.com/gogpu/gamma/gpu"
	"github.com/gogpu/gamma/internal/imageio"
	"github.com/gogpu/gamma/pngmeta"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// summary counts the work done by one run.
type summary struct {
	files   atomic.Int64
	skipped atomic.Int64
	pixels  atomic.Int64
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gammacorrect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := defaultConfig()
	var (
		gammaFlag  = fs.String("gamma", def.Gamma, "gamma exponent: a number, a fraction like 1/2.2, or auto")
		output     = fs.String("o", "", "output file (single input only)")
		suffix     = fs.String("suffix", def.Suffix, "suffix added to output file names")
		workers    = fs.Int("workers", def.Workers, "worker goroutines per image (0 = GOMAXPROCS)")
		band       = fs.Int("band", def.BandHeight, "rows per parallel band (0 = default)")
		kernel     = fs.String("kernel", def.Kernel, "CPU kernel: table or exact")
		useGPU     = fs.Bool("gpu", def.GPU, "use the GPU accelerator when available")
		jobs       = fs.Int("jobs", def.Jobs, "files processed concurrently")
		configPath = fs.String("config", "", "TOML preset file; flags override it")
		verbose    = fs.Bool("v", def.Verbose, "verbose logging")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: gammacorrect [flags] input...\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg := def
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "gamma":
			cfg.Gamma = *gammaFlag
		case "suffix":
			cfg.Suffix = *suffix
		case "workers":
			cfg.Workers = *workers
		case "band":
			cfg.BandHeight = *band
		case "kernel":
			cfg.Kernel = *kernel
		case "gpu":
			cfg.GPU = *useGPU
		case "jobs":
			cfg.Jobs = *jobs
		case "v":
			cfg.Verbose = *verbose
		}
	})

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	gamma.SetLogger(logger)
	defer gamma.SetLogger(nil)

	ga, err := parseGamma(cfg.Gamma)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if *output != "" && fs.NArg() > 1 {
		fmt.Fprintln(stderr, "-o requires a single input")
		return 2
	}
	opts, err := cfg.processorOptions()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if cfg.GPU && !gpu.Available() {
		logger.Debug("GPU unavailable, processing on CPU")
	}

	proc := gamma.NewProcessor(opts...)
	defer proc.Close()

	start := time.Now()
	var sum summary
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Jobs, 1))
	for _, in := range fs.Args() {
		out := *output
		if out == "" {
			out = outputPath(in, cfg.Suffix)
		}
		if filepath.Clean(out) == filepath.Clean(in) {
			fmt.Fprintf(stderr, "%s: output would overwrite input\n", in)
			return 2
		}
		g.Go(func() error {
			return processFile(gctx, proc, logger, ga, in, out, &sum)
		})
	}
	err = g.Wait()

	p := message.NewPrinter(language.English)
	p.Fprintf(stdout, "%d files corrected, %d skipped, %d pixels in %v\n",
		sum.files.Load(), sum.skipped.Load(), sum.pixels.Load(), time.Since(start).Round(time.Millisecond))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// processFile corrects one input file and writes the result to out.
func processFile(ctx context.Context, proc *gamma.Processor, logger *slog.Logger,
	ga gammaArg, in, out string, sum *summary) error {
	g := ga.value
	if ga.auto {
		info, err := pngmeta.ExtractFile(in)
		if errors.Is(err, pngmeta.ErrNotPNG) {
			logger.Info("skipping: auto gamma needs a PNG", "file", in)
			sum.skipped.Add(1)
			return nil
		}
		if err != nil {
			return err
		}
		var ok bool
		if g, ok = info.Correction(); !ok {
			logger.Info("skipping: no significant gamma", "file", in)
			sum.skipped.Add(1)
			return nil
		}
		logger.Debug("gamma from gAMA chunk", "file", in, "gAMA", info.GAMA, "gamma", g)
	}

	img, err := imageio.Load(in)
	if err != nil {
		return err
	}
	if err := proc.ProcessNRGBA(ctx, img, g); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := imageio.Save(out, img); err != nil {
		return err
	}

	b := img.Bounds()
	sum.files.Add(1)
	sum.pixels.Add(int64(b.Dx()) * int64(b.Dy()))
	logger.Info("corrected", "file", in, "output", out, "gamma", g)
	return nil
}

// outputPath derives the output name for in. Formats that cannot be written
// are saved as PNG.
func outputPath(in, suffix string) string {
	ext := filepath.Ext(in)
	base := strings.TrimSuffix(in, ext)
	if !imageio.CanSave(in) {
		ext = ".png"
	}
	return base + suffix + ext
}
