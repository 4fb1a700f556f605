package compression

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/chai2010/webp"
)

// WebPConverter re-encodes raster images into lossy WebP. It never resizes.
type WebPConverter struct {
	logger *slog.Logger
}

// NewWebPConverter creates a new converter instance
func NewWebPConverter(logger *slog.Logger) *WebPConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebPConverter{logger: logger}
}

// Convert decodes data and encodes it as WebP at quality in (0,1].
func (c *WebPConverter) Convert(ctx context.Context, name string, data []byte, quality float64) (*TranscodeResult, error) {
	img, format, err := decodeImage(data)
	if err != nil {
		return nil, NewCompressionError("convert to webp", name, "", ErrConversion, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(qualityPercent(quality))}); err != nil {
		return nil, NewCompressionError("convert to webp", name, "image/"+format, ErrConversion, err)
	}

	c.logger.Debug("Converted image to webp",
		"file", name,
		"source_format", format,
		"original_size", len(data),
		"webp_size", buf.Len())

	return &TranscodeResult{Data: buf.Bytes(), OriginalSize: int64(len(data)), Extension: ".webp"}, nil
}
