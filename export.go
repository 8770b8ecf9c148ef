package feedback

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Format is an export image encoding.
type Format uint8

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatBMP
	FormatTIFF
)

var formatExts = [...]string{"png", "jpg", "bmp", "tiff"}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if int(f) < len(formatExts) {
		return formatExts[f]
	}
	return "bin"
}

// ParseFormat accepts an extension or name such as "png", "jpeg" or ".tif".
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png", "":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return FormatPNG, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ExportOptions controls snapshot encoding.
type ExportOptions struct {
	// Format selects the encoder. The zero value is PNG.
	Format Format
	// Enhance multiplies RGB before encoding. Zero means 1 (unchanged).
	Enhance float64
	// Scale resizes the image. Zero means 1 (native size).
	Scale float64
	// Quality is the JPEG quality. Zero means jpeg.DefaultQuality.
	Quality int
}

// Snapshot reads the state of s into an opaque image: every pixel's alpha
// is forced to 255 because the feedback buffer's alpha carries no meaning
// once exported. RGB values are kept as stored.
func Snapshot(s Surface) (*image.NRGBA, error) {
	w, h := s.Size()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if err := s.ReadState(img.Pix); err != nil {
		return nil, fmt.Errorf("feedback: snapshot: %w", err)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img, nil
}

// Export encodes the state of s to w. The engine state is not modified.
func Export(w io.Writer, s Surface, opts ExportOptions) error {
	img, err := Snapshot(s)
	if err != nil {
		return err
	}
	return Encode(w, img, opts)
}

// Encode applies enhancement and scaling to img and writes it to w.
func Encode(w io.Writer, img *image.NRGBA, opts ExportOptions) error {
	if opts.Enhance != 0 && opts.Enhance != 1 {
		if !finite(opts.Enhance) || opts.Enhance < 0 {
			return fmt.Errorf("%w: enhance %v", ErrInvalidParameter, opts.Enhance)
		}
		img = enhance(img, opts.Enhance)
	}
	var out image.Image = img
	if opts.Scale != 0 && opts.Scale != 1 {
		scaled, err := scale(img, opts.Scale)
		if err != nil {
			return err
		}
		out = scaled
	}

	var err error
	switch opts.Format {
	case FormatPNG:
		err = png.Encode(w, out)
	case FormatJPEG:
		q := opts.Quality
		if q <= 0 {
			q = jpeg.DefaultQuality
		}
		err = jpeg.Encode(w, out, &jpeg.Options{Quality: min(q, 100)})
	case FormatBMP:
		err = bmp.Encode(w, out)
	case FormatTIFF:
		err = tiff.Encode(w, out, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, opts.Format)
	}
	if err != nil {
		return fmt.Errorf("feedback: encode %s: %w", opts.Format.Ext(), err)
	}
	return nil
}

// enhance returns a copy of img with RGB multiplied by k and clamped.
func enhance(img *image.NRGBA, k float64) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	for i := 0; i < len(img.Pix); i += 4 {
		out.Pix[i] = uint8(min(float64(img.Pix[i])*k, 255))
		out.Pix[i+1] = uint8(min(float64(img.Pix[i+1])*k, 255))
		out.Pix[i+2] = uint8(min(float64(img.Pix[i+2])*k, 255))
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// scale resizes img by factor with Catmull-Rom resampling.
func scale(img *image.NRGBA, factor float64) (*image.NRGBA, error) {
	if !finite(factor) || factor <= 0 {
		return nil, fmt.Errorf("%w: scale %v", ErrInvalidParameter, factor)
	}
	b := img.Bounds()
	w := max(int(float64(b.Dx())*factor+0.5), 1)
	h := max(int(float64(b.Dy())*factor+0.5), 1)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}

// WriteFile exports the state of s into dir as <timestamp>_<label>.<ext>
// and returns the path written.
func WriteFile(dir, label string, s Surface, opts ExportOptions) (string, error) {
	img, err := Snapshot(s)
	if err != nil {
		return "", err
	}
	return SaveImage(dir, label, img, opts)
}

// SaveImage encodes img into dir as <timestamp>_<label>.<ext> and returns
// the path written.
func SaveImage(dir, label string, img *image.NRGBA, opts ExportOptions) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("feedback: export: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", stamp, sanitizeLabel(label), opts.Format.Ext()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("feedback: export: create %s: %w", path, err)
	}
	if err := Encode(f, img, opts); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("feedback: export: close %s: %w", path, err)
	}
	Logger().Info("feedback: exported", "path", path)
	return path, nil
}

// Export encodes the engine state to w.
func (e *Engine) Export(w io.Writer, opts ExportOptions) error {
	return Export(w, e.surface, opts)
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
