package upload

import (
	"context"
	"sync"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
)

// fileUploader определяет интерфейс загрузки одного файла
type fileUploader interface {
	Upload(ctx context.Context, asset *media.Asset, ownerID int, folder string, onProgress ProgressFunc) (string, error)
}

// BatchUploader загружает набор файлов конкурентно как одно целое
// с единым агрегированным сигналом прогресса
type BatchUploader struct {
	uploader fileUploader
}

// NewBatchUploader создает новый экземпляр BatchUploader
func NewBatchUploader(uploader fileUploader) *BatchUploader {
	return &BatchUploader{
		uploader: uploader,
	}
}

// UploadAll запускает все загрузки одновременно и возвращает URL в порядке
// входного списка независимо от порядка завершения. Первая фатальная ошибка
// прерывает батч; уже запущенные загрузки не отменяются и не повторяются.
//
// Прогресс файла i из N дает общий процент ((i + p/100) / N) * 100. Если
// файл с большим индексом завершается раньше, вычисленный общий процент может
// на время просесть — это известное приближение, оно сохранено намеренно.
func (b *BatchUploader) UploadAll(ctx context.Context, assets []*media.Asset, ownerID int, folder string, onProgress ProgressFunc) ([]string, error) {
	urls := make([]string, len(assets))
	total := float64(len(assets))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset *media.Asset) {
			defer wg.Done()

			url, err := b.uploader.Upload(ctx, asset, ownerID, folder, func(p float64) {
				// Обновления прогресса сериализуются одним мьютексом,
				// чтобы вызывающий не получал перемешанных значений
				mu.Lock()
				defer mu.Unlock()
				if onProgress != nil {
					onProgress((float64(i) + p/100) / total * 100)
				}
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			urls[i] = url
		}(i, asset)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return urls, nil
}
