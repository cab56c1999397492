package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"pixelfix/internal/batch"
	"pixelfix/internal/bleed"
	"pixelfix/internal/codec"
	"pixelfix/internal/config"
	"pixelfix/internal/inputs"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const description = `Recolors fully transparent pixels with the color of the nearest opaque edge,
so that resizing or filtering the image no longer bleeds dark fringes. Files
are rewritten in place.

  pixelfix "path to file"                  fix transparent pixels in file
  pixelfix "path to dir"                   fix transparent pixels in directory
  pixelfix "path to file" "path to file 2" fix transparent pixels in multiple files
  pixelfix -d "path to file"               view debug output (will overwrite file)`

var cli struct {
	Debug       bool             `short:"d" help:"Make repaired pixels opaque so the fill is visible."`
	Workers     int              `short:"w" help:"Number of worker goroutines (default: NumCPU)."`
	Config      string           `short:"c" type:"existingfile" help:"Path to a JSON config file."`
	Recursive   bool             `short:"r" help:"Descend into subdirectories."`
	Ext         []string         `help:"Accepted file extensions (default: jpg,png,bmp,tif)."`
	JPEGQuality int              `name:"jpeg-quality" help:"JPEG quality 1-100 (default: 95)."`
	Report      string           `type:"path" help:"Write a JSON report of all results to this file."`
	Progress    bool             `help:"Print throughput every two seconds."`
	Version     kong.VersionFlag `short:"v" help:"Print version information and quit."`

	Paths []string `arg:"" optional:"" name:"path" type:"path" help:"Image files or directories to fix."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("pixelfix"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("pixelfix %s (built %s, commit %s)", Version, BuildTime, GitCommit)},
	)

	if len(cli.Paths) == 0 {
		ctx.FatalIfErrorf(ctx.PrintUsage(false))
		return
	}

	// Load config
	var cfg config.Config
	if cli.Config != "" {
		var err error
		cfg, err = config.Load(cli.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Debug:       cli.Debug,
		Recursive:   cli.Recursive,
		Progress:    cli.Progress,
		Extensions:  cli.Ext,
		JPEGQuality: cli.JPEGQuality,
		Report:      cli.Report,
		Workers:     cli.Workers,
	})

	files, skipped := inputs.Resolve(cli.Paths, inputs.Options{
		Extensions: cfg.Extensions,
		Recursive:  cfg.Recursive,
	})
	for _, s := range skipped {
		fmt.Println(s)
	}

	if len(files) == 0 {
		fmt.Println("No images to fix.")
		return
	}

	start := time.Now()

	results := batch.Run(batch.Config{
		Repair:   bleed.Options{Debug: cfg.Debug},
		Codec:    codec.Options{JPEGQuality: cfg.JPEGQuality},
		Workers:  cfg.Workers,
		Progress: cfg.Progress,
	}, files)

	summary := batch.Summarize(results)
	fmt.Printf("Done in %.1fs: %d fixed, %d unchanged, %d failed (%d images, %d pixels filled)\n",
		time.Since(start).Seconds(), summary.Fixed, summary.NoTransparency+summary.NoSamples,
		summary.Failed, summary.Total, summary.PixelsFilled)

	if cfg.Report != "" {
		if err := batch.WriteReport(cfg.Report, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: report write failed: %v\n", err)
		} else {
			fmt.Printf("Report: %s\n", cfg.Report)
		}
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
