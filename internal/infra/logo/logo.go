package logo

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"

	"valour-interiors/quotes_backend/internal/domain/quote/pdf/layout"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

// MaxPixels bounds the longer side of the embedded logo.
const MaxPixels = 512

// Load reads the image at path and prepares it for embedding. A missing path
// or unreadable image is logged and yields nil; documents then render
// without a logo.
func Load(ctx context.Context, path string, log *logger.Logger) *layout.Logo {
	if path == "" {
		return nil
	}
	if log == nil {
		log = logger.Nop()
	}
	f, err := os.Open(path)
	if err != nil {
		log.WarnErr(log.WithField(ctx, "path", path), "logo.load_failed", err)
		return nil
	}
	defer f.Close()

	l, err := Decode(f)
	if err != nil {
		log.WarnErr(log.WithField(ctx, "path", path), "logo.decode_failed", err)
		return nil
	}
	return l
}

// Decode reads an image stream, applies its EXIF orientation and prepares it
// for embedding.
func Decode(r io.Reader) (*layout.Logo, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return encode(img)
}

// encode downsizes to MaxPixels and re-encodes as PNG, the one format the
// PDF backend always accepts.
func encode(img image.Image) (*layout.Logo, error) {
	fitted := imaging.Fit(img, MaxPixels, MaxPixels, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return &layout.Logo{Data: buf.Bytes(), Format: "PNG"}, nil
}
