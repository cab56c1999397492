package batch

import (
	"encoding/json"
	"os"

	"pixelfix/internal/bleed"
)

// Summary aggregates the results of a run.
type Summary struct {
	Total          int `json:"total"`
	Fixed          int `json:"fixed"`
	NoTransparency int `json:"no_transparency"`
	NoSamples      int `json:"no_samples"`
	Failed         int `json:"failed"`
	PixelsFilled   int `json:"pixels_filled"`
}

// Summarize counts results by kind.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Kind {
		case Fixed:
			s.Fixed++
		case NoTransparency:
			s.NoTransparency++
		case NoSamples:
			s.NoSamples++
		}
		if r.Kind.Failed() {
			s.Failed++
		}
		s.PixelsFilled += r.Stats.Filled
	}
	return s
}

// ReportEntry represents one file in the JSON report.
type ReportEntry struct {
	Path   string      `json:"path"`
	Format string      `json:"format,omitempty"`
	Kind   Kind        `json:"result"`
	Stage  Stage       `json:"stage"`
	Stats  bleed.Stats `json:"stats"`
	Error  string      `json:"error,omitempty"`
}

// Report is the document written by WriteReport.
type Report struct {
	Summary Summary       `json:"summary"`
	Images  []ReportEntry `json:"images"`
}

// WriteReport writes the run summary and per-file results as JSON.
func WriteReport(path string, results []Result) error {
	entries := make([]ReportEntry, len(results))
	for i, r := range results {
		entries[i] = ReportEntry{
			Path:   r.Path,
			Format: r.Format,
			Kind:   r.Kind,
			Stage:  r.Stage,
			Stats:  r.Stats,
			Error:  r.Error,
		}
	}

	data, err := json.MarshalIndent(Report{Summary: Summarize(results), Images: entries}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
