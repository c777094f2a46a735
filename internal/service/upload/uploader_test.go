package upload

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
	"github.com/bulatminnakhmetov/vitrina-backend/internal/storage/blob"
)

// MockStorage - мок для интерфейса blob.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string, onProgress blob.ProgressFunc) (string, error) {
	args := m.Called(ctx, key, reader, size, contentType, onProgress)
	return args.String(0), args.Error(1)
}

func testImageAsset(name string, size int) *media.Asset {
	return &media.Asset{
		Name:        name,
		Kind:        media.KindImage,
		ContentType: "image/jpeg",
		Data:        make([]byte, size),
	}
}

func TestFileUploaderUpload(t *testing.T) {
	t.Run("successful upload", func(t *testing.T) {
		mockStorage := new(MockStorage)
		uploader := NewFileUploader(mockStorage)

		var uploadedKey string
		mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, int64(1024), "image/jpeg", mock.Anything).
			Run(func(args mock.Arguments) {
				uploadedKey = args.String(1)
			}).
			Return("https://cdn.example.com/7/images/test.jpg", nil)

		url, err := uploader.Upload(context.Background(), testImageAsset("test.jpg", 1024), 7, "images", nil)

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/7/images/test.jpg", url)

		// Ключ объекта: {ownerID}/{folder}/{timestamp}_{token}.{ext}
		assert.Regexp(t, regexp.MustCompile(`^7/images/\d+_[0-9a-f-]{36}\.jpg$`), uploadedKey)

		mockStorage.AssertExpectations(t)
	})

	t.Run("unique keys for concurrent uploads", func(t *testing.T) {
		mockStorage := new(MockStorage)
		uploader := NewFileUploader(mockStorage)

		keys := make(map[string]bool)
		mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				keys[args.String(1)] = true
			}).
			Return("https://cdn.example.com/file.jpg", nil)

		for i := 0; i < 10; i++ {
			_, err := uploader.Upload(context.Background(), testImageAsset("test.jpg", 10), 7, "images", nil)
			assert.NoError(t, err)
		}

		assert.Len(t, keys, 10)
	})

	t.Run("nil asset fails with validation error", func(t *testing.T) {
		mockStorage := new(MockStorage)
		uploader := NewFileUploader(mockStorage)

		url, err := uploader.Upload(context.Background(), nil, 7, "images", nil)

		assert.Empty(t, url)
		var uploadErr *Error
		assert.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, ErrorValidation, uploadErr.Kind)

		// Хранилище не должно вызываться
		mockStorage.AssertNotCalled(t, "Upload")
	})

	t.Run("empty asset fails with validation error", func(t *testing.T) {
		mockStorage := new(MockStorage)
		uploader := NewFileUploader(mockStorage)

		url, err := uploader.Upload(context.Background(), testImageAsset("empty.jpg", 0), 7, "images", nil)

		assert.Empty(t, url)
		var uploadErr *Error
		assert.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, ErrorValidation, uploadErr.Kind)

		mockStorage.AssertNotCalled(t, "Upload")
	})

	t.Run("progress is emitted from byte counts", func(t *testing.T) {
		mockStorage := new(MockStorage)
		uploader := NewFileUploader(mockStorage)

		mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				onProgress := args.Get(5).(blob.ProgressFunc)
				onProgress(256, 1024)
				onProgress(512, 1024)
				onProgress(1024, 1024)
			}).
			Return("https://cdn.example.com/file.jpg", nil)

		var progress []float64
		_, err := uploader.Upload(context.Background(), testImageAsset("test.jpg", 1024), 7, "images", func(p float64) {
			progress = append(progress, p)
		})

		assert.NoError(t, err)
		assert.Equal(t, []float64{25, 50, 100}, progress)
	})
}

func TestFileUploaderErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		code        blob.ErrorCode
		wantKind    ErrorKind
		wantMessage string
	}{
		{
			name:        "unauthorized",
			code:        blob.CodeUnauthorized,
			wantKind:    ErrorUnauthorized,
			wantMessage: "storage access denied: check write permissions for authenticated users",
		},
		{
			name:        "quota exceeded",
			code:        blob.CodeQuotaExceeded,
			wantKind:    ErrorQuotaExceeded,
			wantMessage: "storage quota exceeded",
		},
		{
			name:        "unauthenticated",
			code:        blob.CodeUnauthenticated,
			wantKind:    ErrorUnauthenticated,
			wantMessage: "must be logged in to upload files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStorage := new(MockStorage)
			uploader := NewFileUploader(mockStorage)

			storageErr := &blob.StorageError{Code: tt.code, Message: "backend message"}
			mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return("", storageErr)

			_, err := uploader.Upload(context.Background(), testImageAsset("test.jpg", 10), 7, "images", nil)

			var uploadErr *Error
			assert.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.wantKind, uploadErr.Kind)
			assert.Equal(t, tt.wantMessage, uploadErr.Message)

			// Исходная ошибка бэкенда сохраняется для диагностики
			assert.ErrorIs(t, err, storageErr)
		})
	}

	t.Run("unknown code carries backend message", func(t *testing.T) {
		mockStorage := new(MockStorage)
		uploader := NewFileUploader(mockStorage)

		mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", &blob.StorageError{Code: blob.CodeUnknown, Message: "connection reset"})

		_, err := uploader.Upload(context.Background(), testImageAsset("test.jpg", 10), 7, "images", nil)

		var uploadErr *Error
		assert.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, ErrorUnknown, uploadErr.Kind)
		assert.Contains(t, uploadErr.Message, "connection reset")
	})

	t.Run("plain error maps to unknown", func(t *testing.T) {
		mockStorage := new(MockStorage)
		uploader := NewFileUploader(mockStorage)

		mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("boom"))

		_, err := uploader.Upload(context.Background(), testImageAsset("test.jpg", 10), 7, "images", nil)

		var uploadErr *Error
		assert.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, ErrorUnknown, uploadErr.Kind)
	})
}
