package batch

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixelfix/internal/bleed"
)

// writePNG encodes img to dir/name and returns the path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

// createHalfImage returns a w x h image whose top half is c and bottom half
// fully transparent black.
func createHalfImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h/2; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func createFilledImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// readPNG decodes path and converts it to NRGBA. Fully opaque results come
// back from image/png as *image.RGBA.
func readPNG(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	n := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n.SetNRGBA(x, y, color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
		}
	}
	return n
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	green := color.NRGBA{0, 200, 0, 255}

	fixable := writePNG(t, dir, "fixable.png", createHalfImage(6, 6, green))
	opaque := writePNG(t, dir, "opaque.png", createFilledImage(4, 4, green))
	empty := writePNG(t, dir, "empty.png", createFilledImage(4, 4, color.NRGBA{9, 9, 9, 0}))
	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	opaqueBefore, _ := os.ReadFile(opaque)

	var out, errOut bytes.Buffer
	paths := []string{fixable, opaque, empty, corrupt}
	results := Run(Config{Workers: 3, Out: &out, Err: &errOut}, paths)

	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}

	want := []struct {
		kind  Kind
		stage Stage
	}{
		{Fixed, StageSaved},
		{NoTransparency, StageExtracted},
		{NoSamples, StageExtracted},
		{DecodeFailure, StageNone},
	}
	for i, w := range want {
		r := results[i]
		if r.Path != paths[i] {
			t.Errorf("result %d path: got %s, want %s", i, r.Path, paths[i])
		}
		if r.Kind != w.kind || r.Stage != w.stage {
			t.Errorf("%s: got %v/%v, want %v/%v", filepath.Base(r.Path), r.Kind, r.Stage, w.kind, w.stage)
		}
	}
	if results[0].Stats.Filled != 18 {
		t.Errorf("fixable: filled %d pixels, want 18", results[0].Stats.Filled)
	}
	if results[3].Error == "" {
		t.Error("decode failure should carry an error message")
	}

	fixed := readPNG(t, fixable)
	for y := 3; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if got := fixed.NRGBAAt(x, y); got != (color.NRGBA{0, 200, 0, 0}) {
				t.Fatalf("pixel (%d,%d): got %v, want green with alpha 0", x, y, got)
			}
		}
	}

	opaqueAfter, _ := os.ReadFile(opaque)
	if !bytes.Equal(opaqueBefore, opaqueAfter) {
		t.Error("opaque image was rewritten")
	}

	log := out.String()
	for _, line := range []string{
		"Fixing image: " + fixable,
		"Written fixed image: " + fixable,
		"No transparent pixels to fix: " + opaque,
		"No transparent pixels to fix: " + empty,
	} {
		if !strings.Contains(log, line+"\n") {
			t.Errorf("status output missing %q:\n%s", line, log)
		}
	}
	if !strings.Contains(errOut.String(), corrupt) {
		t.Errorf("error output should name %s, got:\n%s", corrupt, errOut.String())
	}
}

func TestRun_Debug(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "sprite.png", createHalfImage(4, 4, color.NRGBA{255, 0, 0, 255}))

	results := Run(Config{Workers: 1, Repair: bleed.Options{Debug: true}, Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, []string{path})
	if results[0].Kind != Fixed {
		t.Fatalf("got %v: %s", results[0].Kind, results[0].Error)
	}

	img := readPNG(t, path)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := img.NRGBAAt(x, y); got != (color.NRGBA{255, 0, 0, 255}) {
				t.Errorf("pixel (%d,%d): got %v, want opaque red", x, y, got)
			}
		}
	}
}

func TestRun_ManyWorkers(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 12; i++ {
		paths = append(paths, writePNG(t, dir, "img"+string(rune('a'+i))+".png", createHalfImage(8, 8, color.NRGBA{uint8(i * 20), 0, 0, 255})))
	}

	results := Run(Config{Workers: 4, Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, paths)

	for i, r := range results {
		if r.Path != paths[i] || r.Kind != Fixed {
			t.Errorf("result %d: got %s %v, want %s fixed", i, r.Path, r.Kind, paths[i])
		}
	}
}

func TestRun_NoPaths(t *testing.T) {
	if results := Run(Config{Out: &bytes.Buffer{}}, nil); len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Kind: Fixed, Stats: bleed.Stats{Filled: 10}},
		{Kind: Fixed, Stats: bleed.Stats{Filled: 5}},
		{Kind: NoTransparency},
		{Kind: NoSamples},
		{Kind: DecodeFailure},
		{Kind: EncodeFailure, Stats: bleed.Stats{Filled: 3}},
	}

	got := Summarize(results)
	want := Summary{Total: 6, Fixed: 2, NoTransparency: 1, NoSamples: 1, Failed: 2, PixelsFilled: 18}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	results := []Result{
		{Path: "a.png", Format: "png", Kind: Fixed, Stage: StageSaved, Stats: bleed.Stats{Transparent: 4, Samples: 2, Filled: 4}},
		{Path: "b.png", Kind: DecodeFailure, Error: "boom"},
	}

	if err := WriteReport(path, results); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc struct {
		Summary Summary `json:"summary"`
		Images  []struct {
			Path   string `json:"path"`
			Result string `json:"result"`
			Stage  string `json:"stage"`
			Error  string `json:"error"`
		} `json:"images"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if doc.Summary.Fixed != 1 || doc.Summary.Failed != 1 {
		t.Errorf("summary: got %+v", doc.Summary)
	}
	if len(doc.Images) != 2 || doc.Images[0].Result != "fixed" || doc.Images[0].Stage != "saved" {
		t.Errorf("images: got %+v", doc.Images)
	}
	if doc.Images[1].Result != "decode_failure" || doc.Images[1].Error != "boom" {
		t.Errorf("failure entry: got %+v", doc.Images[1])
	}
}

func TestKindAndStageStrings(t *testing.T) {
	if EncodeFailure.String() != "encode_failure" || !EncodeFailure.Failed() || NoSamples.Failed() {
		t.Error("unexpected Kind behaviour")
	}
	if Kind(42).String() != "kind(42)" || Stage(-1).String() != "stage(-1)" {
		t.Error("out of range values should still print")
	}
	if StageIndexed.String() != "indexed" {
		t.Errorf("got %q", StageIndexed.String())
	}
}
