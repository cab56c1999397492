package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"pixelfix/internal/bleed"
	"pixelfix/internal/codec"
)

// Config holds all shared settings for a batch run.
type Config struct {
	Repair   bleed.Options
	Codec    codec.Options
	Workers  int
	Progress bool      // print a throughput line every two seconds
	Out      io.Writer // status lines; os.Stdout when nil
	Err      io.Writer // failure lines; os.Stderr when nil
}

// Stage is the last pipeline step a unit completed.
type Stage int

const (
	StageNone Stage = iota
	StageLoaded
	StageExtracted
	StageIndexed
	StageFilled
	StageSaved
)

var stageNames = [...]string{"none", "loaded", "extracted", "indexed", "filled", "saved"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Kind classifies the outcome of one unit.
type Kind int

const (
	Fixed Kind = iota
	NoTransparency
	NoSamples
	DecodeFailure
	EncodeFailure
)

var kindNames = [...]string{"fixed", "no_transparency", "no_samples", "decode_failure", "encode_failure"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Failed reports whether the kind is an error rather than a no-op.
func (k Kind) Failed() bool {
	return k == DecodeFailure || k == EncodeFailure
}

// Result holds the outcome of processing one file.
type Result struct {
	Path   string
	Format string
	Stage  Stage
	Kind   Kind
	Stats  bleed.Stats
	Error  string
}

// Run repairs every path using a worker pool. Results are returned in the
// order of paths; a failing unit never stops the others.
func Run(cfg Config, paths []string) []Result {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	cfg.Out = &lockedWriter{w: cfg.Out}
	cfg.Err = &lockedWriter{w: cfg.Err}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Fprintf(cfg.Out, "  [%d/%d] %.1f images/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	pathChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range pathChan {
				results[idx] = processImage(cfg, paths[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range paths {
		pathChan <- i
	}
	close(pathChan)

	wg.Wait()
	close(done)

	return results
}

// lockedWriter keeps status lines from different workers whole.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func processImage(cfg Config, path string) Result {
	fmt.Fprintf(cfg.Out, "Fixing image: %s\n", path)

	img, format, err := codec.Decode(path)
	if err != nil {
		fmt.Fprintf(cfg.Err, "Error occurred opening image %q:\n%v\n", path, err)
		return Result{
			Path:  path,
			Kind:  DecodeFailure,
			Error: err.Error(),
		}
	}

	res := Result{Path: path, Format: format, Stage: StageLoaded}

	st, err := bleed.Repair(img, cfg.Repair)
	res.Stats = st
	switch {
	case errors.Is(err, bleed.ErrNoTransparency):
		res.Stage = StageExtracted
		res.Kind = NoTransparency
		fmt.Fprintf(cfg.Out, "No transparent pixels to fix: %s\n", path)
		return res
	case errors.Is(err, bleed.ErrNoSamples):
		res.Stage = StageExtracted
		res.Kind = NoSamples
		fmt.Fprintf(cfg.Out, "No transparent pixels to fix: %s\n", path)
		return res
	case err != nil:
		// Repair only fails before filling; treat it as unreadable input.
		res.Stage = StageExtracted
		res.Kind = DecodeFailure
		res.Error = err.Error()
		fmt.Fprintf(cfg.Err, "Error occurred fixing image %q:\n%v\n", path, err)
		return res
	}
	res.Stage = StageFilled

	if err := codec.Encode(img, path, cfg.Codec); err != nil {
		res.Kind = EncodeFailure
		res.Error = err.Error()
		fmt.Fprintf(cfg.Err, "Unable to save image %q:\n%v\n", path, err)
		return res
	}

	res.Stage = StageSaved
	res.Kind = Fixed
	fmt.Fprintf(cfg.Out, "Written fixed image: %s\n", path)
	return res
}
