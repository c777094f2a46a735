package upload

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
	"github.com/bulatminnakhmetov/vitrina-backend/internal/storage/blob"
)

// ProgressFunc принимает прогресс в процентах, 0–100
type ProgressFunc func(percent float64)

// FileUploader загружает один файл в удаленное хранилище
type FileUploader struct {
	storage blob.Storage
}

// NewFileUploader создает новый экземпляр FileUploader
func NewFileUploader(storage blob.Storage) *FileUploader {
	return &FileUploader{
		storage: storage,
	}
}

// Upload загружает файл по уникальному пути и возвращает постоянный URL.
// Прогресс передачи сообщается через onProgress, монотонно в рамках одного файла.
func (u *FileUploader) Upload(ctx context.Context, asset *media.Asset, ownerID int, folder string, onProgress ProgressFunc) (string, error) {
	if asset == nil || len(asset.Data) == 0 {
		return "", newValidationError("file is empty")
	}

	key := objectKey(asset, ownerID, folder)

	url, err := u.storage.Upload(ctx, key, bytes.NewReader(asset.Data), asset.Size(), asset.ContentType, func(transferred, total int64) {
		if onProgress != nil && total > 0 {
			onProgress(float64(transferred) / float64(total) * 100)
		}
	})
	if err != nil {
		return "", mapStorageError(err)
	}

	return url, nil
}

// objectKey строит путь вида {ownerID}/{folder}/{timestamp}_{token}.{ext}.
// Таймстемп и случайный токен исключают коллизии конкурентных загрузок.
func objectKey(asset *media.Asset, ownerID int, folder string) string {
	return fmt.Sprintf("%d/%s/%d_%s%s", ownerID, folder, time.Now().UnixNano(), uuid.NewString(), asset.Ext())
}
