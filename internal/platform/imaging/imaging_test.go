package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func createTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspect_JPEG(t *testing.T) {
	info, err := Inspect(createTestJPEG(t, 40, 30))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", info.MIME)
	assert.Equal(t, "jpeg", info.Format)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 30, info.Height)
}

func TestInspect_PNG(t *testing.T) {
	info, err := Inspect(createTestPNG(t, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MIME)
}

func TestInspect_Rejects(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Inspect(nil)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
	t.Run("plain text", func(t *testing.T) {
		_, err := Inspect([]byte("definitely not an image"))
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
	t.Run("truncated png", func(t *testing.T) {
		data := createTestPNG(t, 8, 8)
		_, err := Inspect(data[:12])
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
}
