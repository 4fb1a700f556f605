package compression

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ImageCompressor resizes and re-encodes raster images in a single pass.
type ImageCompressor struct {
	logger *slog.Logger
}

// NewImageCompressor creates a new image compressor instance
func NewImageCompressor(logger *slog.Logger) *ImageCompressor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageCompressor{logger: logger}
}

// Compress downscales data so neither side exceeds cfg.MaxLongEdge and
// re-encodes it at cfg.Quality. The size budget is advisory: an over-budget
// result is accepted as-is. When re-encoding does not shrink the input the
// original bytes are returned unchanged. ctx is checked between the decode,
// resize and encode stages; a stage already running is not interrupted.
func (c *ImageCompressor) Compress(ctx context.Context, name string, data []byte, cfg ImageConfig) (*TranscodeResult, error) {
	img, format, err := decodeImage(data)
	if err != nil {
		return nil, NewCompressionError("compress image", name, "", ErrDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	resized := false
	if cfg.MaxLongEdge > 0 && (bounds.Dx() > cfg.MaxLongEdge || bounds.Dy() > cfg.MaxLongEdge) {
		img = imaging.Fit(img, cfg.MaxLongEdge, cfg.MaxLongEdge, imaging.Lanczos)
		resized = true
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	encoded, ext, err := encodeImage(img, format, cfg.Quality)
	if err != nil {
		return nil, NewCompressionError("compress image", name, "image/"+format, ErrEncode, err)
	}

	originalExt := extensionForFormat(format)
	if len(encoded) >= len(data) {
		c.logger.Debug("Re-encode did not reduce size, keeping original",
			"file", name,
			"original_size", len(data),
			"encoded_size", len(encoded),
			"resized", resized)
		return &TranscodeResult{Data: data, OriginalSize: int64(len(data)), Extension: originalExt}, nil
	}

	if budget := int64(cfg.MaxSizeMB * bytesPerMB); budget > 0 && int64(len(encoded)) > budget {
		c.logger.Debug("Compressed image exceeds size budget, accepting best effort",
			"file", name,
			"encoded_size", len(encoded),
			"budget", budget)
	}

	return &TranscodeResult{Data: encoded, OriginalSize: int64(len(data)), Extension: ext}, nil
}

// decodeImage decodes data and reports the registered format name.
func decodeImage(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	var img image.Image
	if format == "webp" {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, "", err
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", fmt.Errorf("empty image (%dx%d)", b.Dx(), b.Dy())
	}
	return img, format, nil
}

// encodeImage writes img in the source container when an encoder exists.
// GIF, BMP and TIFF sources are re-encoded as PNG.
func encodeImage(img image.Image, format string, quality float64) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(qualityPercent(quality))); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".jpg", nil
	case "webp":
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(qualityPercent(quality))}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".webp", nil
	default:
		if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".png", nil
	}
}

func extensionForFormat(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ""
	}
	return "." + format
}

// qualityPercent maps a (0,1] factor onto the 1..100 scale encoders use.
func qualityPercent(quality float64) int {
	if quality <= 0 || math.IsNaN(quality) {
		return 75
	}
	return int(math.Max(1, math.Min(100, math.Round(quality*100))))
}
