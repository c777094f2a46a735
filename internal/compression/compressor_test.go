package compression

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
)

// noisyImageAsset генерирует PNG с шумом: такой файл большой,
// и JPEG-перекодирование гарантированно дает выигрыш
func noisyImageAsset(t *testing.T, name string, width, height int) *media.Asset {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))

	return &media.Asset{
		Name:        name,
		Kind:        media.KindImage,
		ContentType: "image/png",
		Data:        buf.Bytes(),
	}
}

func TestImagingCompressorCompress(t *testing.T) {
	t.Run("shrinks oversized image within constraints", func(t *testing.T) {
		compressor := NewImagingCompressor()
		asset := noisyImageAsset(t, "photo.png", 1600, 1200)

		constraints := media.Constraints{MaxWidth: 800, MaxHeight: 600, Quality: 0.8}
		out, err := compressor.Compress(context.Background(), []*media.Asset{asset}, constraints, nil)

		assert.NoError(t, err)
		require.Len(t, out, 1)

		// Результат меньше оригинала и перекодирован в JPEG
		assert.Less(t, len(out[0].Data), len(asset.Data))
		assert.Equal(t, "image/jpeg", out[0].ContentType)
		assert.Equal(t, "photo.jpg", out[0].Name)

		img, err := imaging.Decode(bytes.NewReader(out[0].Data))
		require.NoError(t, err)
		assert.LessOrEqual(t, img.Bounds().Dx(), 800)
		assert.LessOrEqual(t, img.Bounds().Dy(), 600)
	})

	t.Run("undecodable data falls back to original", func(t *testing.T) {
		compressor := NewImagingCompressor()
		asset := &media.Asset{
			Name:        "broken.jpg",
			Kind:        media.KindImage,
			ContentType: "image/jpeg",
			Data:        []byte("definitely not an image"),
		}

		out, err := compressor.Compress(context.Background(), []*media.Asset{asset}, media.Constraints{MaxWidth: 800, MaxHeight: 600, Quality: 0.8}, nil)

		assert.NoError(t, err)
		require.Len(t, out, 1)
		// Оригинал остается без изменений, байт в байт
		assert.Equal(t, asset.Data, out[0].Data)
		assert.Equal(t, asset.Name, out[0].Name)
	})

	t.Run("progress reported per asset", func(t *testing.T) {
		compressor := NewImagingCompressor()
		assets := []*media.Asset{
			noisyImageAsset(t, "a.png", 100, 100),
			noisyImageAsset(t, "b.png", 100, 100),
		}

		var progress []float64
		_, err := compressor.Compress(context.Background(), assets, media.Constraints{MaxWidth: 50, MaxHeight: 50, Quality: 0.8}, func(p float64) {
			progress = append(progress, p)
		})

		assert.NoError(t, err)
		assert.Equal(t, []float64{50, 100}, progress)
	})

	t.Run("cancelled context stops the work", func(t *testing.T) {
		compressor := NewImagingCompressor()
		assets := []*media.Asset{noisyImageAsset(t, "a.png", 100, 100)}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out, err := compressor.Compress(ctx, assets, media.Constraints{MaxWidth: 50, MaxHeight: 50, Quality: 0.8}, nil)

		assert.Nil(t, out)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestJpegQuality(t *testing.T) {
	assert.Equal(t, 85, jpegQuality(0.85))
	assert.Equal(t, 1, jpegQuality(0))
	assert.Equal(t, 100, jpegQuality(1.5))
}
