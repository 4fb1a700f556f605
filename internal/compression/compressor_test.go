package compression

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// photo builds a smooth gradient with mild per-pixel texture, which behaves
// like photographic content for lossy encoders.
func photo(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x*7 + y*13) % 32 * 8),
				A: 255,
			})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageCompressor_ShrinksPhotoAtHighLevel(t *testing.T) {
	original := encodeJPEG(t, photo(2400, 1600), 98)
	c := NewImageCompressor(testLogger())

	result, err := c.Compress(context.Background(), "holiday.jpg", original, ImageConfigFor(LevelHigh))
	require.NoError(t, err)

	assert.Less(t, result.Size(), int64(len(original)))
	assert.Equal(t, int64(len(original)), result.OriginalSize)
	assert.Equal(t, ".jpg", result.Extension)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 853, cfg.Height)
}

func TestImageCompressor_KeepsAspectRatioOnTallImages(t *testing.T) {
	original := encodeJPEG(t, photo(1000, 3000), 95)
	c := NewImageCompressor(testLogger())

	result, err := c.Compress(context.Background(), "tall.jpg", original, ImageConfigFor(LevelMedium))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Height)
	assert.Equal(t, 640, cfg.Width)
}

func TestImageCompressor_NeverGrowsSmallInputs(t *testing.T) {
	c := NewImageCompressor(testLogger())
	inputs := map[string][]byte{
		"tiny.png":  encodePNG(t, photo(24, 24)),
		"tiny.jpg":  encodeJPEG(t, photo(24, 24), 40),
	}

	for name, data := range inputs {
		for _, level := range Levels {
			result, err := c.Compress(context.Background(), name, data, ImageConfigFor(level))
			require.NoError(t, err, name)
			assert.LessOrEqual(t, result.Size(), int64(len(data)), "%s at %s", name, level)
		}
	}
}

func TestImageCompressor_ReturnsOriginalWhenNotSmaller(t *testing.T) {
	original := encodeJPEG(t, photo(32, 32), 10)
	c := NewImageCompressor(testLogger())

	result, err := c.Compress(context.Background(), "already-small.jpg", original, ImageConfigFor(LevelLow))
	require.NoError(t, err)
	assert.Equal(t, original, result.Data)
	assert.Equal(t, ".jpg", result.Extension)
}

func TestImageCompressor_DecodeError(t *testing.T) {
	c := NewImageCompressor(testLogger())

	_, err := c.Compress(context.Background(), "broken.jpg", []byte("definitely not an image"), ImageConfigFor(LevelMedium))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "broken.jpg")
}

func TestImageCompressor_StopsWhenCancelled(t *testing.T) {
	original := encodeJPEG(t, photo(2400, 1600), 95)
	c := NewImageCompressor(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := c.Compress(ctx, "holiday.jpg", original, ImageConfigFor(LevelHigh))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestWebPConverter_Convert(t *testing.T) {
	original := encodePNG(t, photo(300, 200))
	c := NewWebPConverter(testLogger())

	result, err := c.Convert(context.Background(), "diagram.png", original, WebPQualityFor(LevelMedium))
	require.NoError(t, err)
	assert.Equal(t, ".webp", result.Extension)

	decoded, err := webp.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, 300, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestWebPConverter_DoesNotResize(t *testing.T) {
	original := encodeJPEG(t, photo(3000, 400), 90)
	c := NewWebPConverter(testLogger())

	result, err := c.Convert(context.Background(), "panorama.jpg", original, WebPQualityFor(LevelHigh))
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestWebPConverter_ConversionError(t *testing.T) {
	c := NewWebPConverter(testLogger())

	_, err := c.Convert(context.Background(), "notes.txt", []byte("plain text"), 0.8)
	assert.ErrorIs(t, err, ErrConversion)
}

func TestWebPConverter_StopsWhenCancelled(t *testing.T) {
	original := encodePNG(t, photo(300, 200))
	c := NewWebPConverter(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Convert(ctx, "diagram.png", original, WebPQualityFor(LevelMedium))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQualityPercent(t *testing.T) {
	assert.Equal(t, 90, qualityPercent(0.9))
	assert.Equal(t, 100, qualityPercent(1.5))
	assert.Equal(t, 1, qualityPercent(0.001))
	assert.Equal(t, 75, qualityPercent(0))
}
