package compression

import (
	"bytes"
	"context"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
)

// ImagingCompressor сжимает изображения через disintegration/imaging:
// вписывает картинку в заданные габариты и перекодирует в JPEG
type ImagingCompressor struct{}

// NewImagingCompressor создает новый экземпляр ImagingCompressor
func NewImagingCompressor() *ImagingCompressor {
	return &ImagingCompressor{}
}

// Compress обрабатывает изображения по очереди. Файл, который не удалось
// сжать или который после сжатия не стал меньше, остается как есть.
// После каждого файла вызывается onProgress с долей завершенных файлов.
func (c *ImagingCompressor) Compress(ctx context.Context, assets []*media.Asset, constraints media.Constraints, onProgress func(float64)) ([]*media.Asset, error) {
	out := make([]*media.Asset, len(assets))

	for i, asset := range assets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		compressed, err := c.compressOne(asset, constraints)
		if err != nil {
			// Сжатие — best-effort: при ошибке оставляем оригинал
			out[i] = asset
		} else {
			out[i] = compressed
		}

		if onProgress != nil {
			onProgress(float64(i+1) / float64(len(assets)) * 100)
		}
	}

	return out, nil
}

func (c *ImagingCompressor) compressOne(asset *media.Asset, constraints media.Constraints) (*media.Asset, error) {
	img, err := imaging.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		return nil, err
	}

	fitted := img
	if constraints.MaxWidth > 0 && constraints.MaxHeight > 0 {
		fitted = imaging.Fit(img, constraints.MaxWidth, constraints.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(jpegQuality(constraints.Quality))); err != nil {
		return nil, err
	}

	// Перекодирование не дало выигрыша или не уложилось в лимит — оставляем оригинал
	if buf.Len() >= len(asset.Data) {
		return asset, nil
	}
	if constraints.MaxSizeMB > 0 && float64(buf.Len()) > constraints.MaxSizeMB*1024*1024 {
		return asset, nil
	}

	return &media.Asset{
		Name:        jpegName(asset.Name),
		Kind:        asset.Kind,
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

// jpegQuality переводит качество 0.0–1.0 в шкалу JPEG 1–100
func jpegQuality(quality float64) int {
	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}

func jpegName(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name + ".jpg"
}
