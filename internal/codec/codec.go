package codec

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	ErrDecode            = errors.New("codec: decode failed")
	ErrEncode            = errors.New("codec: encode failed")
	ErrUnsupportedFormat = errors.New("codec: unsupported format")
)

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 95

// Options tunes the encoders that take parameters.
type Options struct {
	JPEGQuality int
}

// Format returns the canonical format name for a path's extension, or "".
func Format(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpeg"
	case "bmp":
		return "bmp"
	case "tif", "tiff":
		return "tiff"
	case "tga":
		return "tga"
	case "webp":
		return "webp"
	}
	return ""
}

// Decode reads an image file and returns it as an NRGBA grid together with
// its format name. The decoder is chosen from the extension, like Encode.
func Decode(path string) (*image.NRGBA, string, error) {
	format := Format(path)
	if format == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: open %s: %v", ErrDecode, path, err)
	}
	defer f.Close()

	img, err := decode(f, format)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s %s: %v", ErrDecode, format, path, err)
	}

	return toNRGBA(img), format, nil
}

func decode(r io.Reader, format string) (image.Image, error) {
	switch format {
	case "png":
		return png.Decode(r)
	case "jpeg":
		return jpeg.Decode(r)
	case "bmp":
		return bmp.Decode(r)
	case "tiff":
		return tiff.Decode(r)
	case "tga":
		// TGA has no magic number, so it is never sniffed.
		return tga.Decode(r)
	case "webp":
		return nativewebp.Decode(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// toNRGBA converts any image to a zero-origin NRGBA grid.
// NRGBA sources are copied as-is so RGB stored under alpha 0 survives.
func toNRGBA(src image.Image) *image.NRGBA {
	return imaging.Clone(src)
}

// Encode writes img to path using the encoder that matches the extension.
// The data goes to a temporary file in the same directory that is renamed
// over path, so a failed encode leaves the original file intact.
func Encode(img image.Image, path string, opts Options) error {
	format := Format(path)
	if format == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrEncode, path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp, img, format, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s %s: %v", ErrEncode, format, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrEncode, tmpName, err)
	}

	if info, err := os.Stat(path); err == nil {
		os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrEncode, path, err)
	}
	return nil
}

func encode(w io.Writer, img image.Image, format string, opts Options) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg":
		q := opts.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "tga":
		return tga.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}
