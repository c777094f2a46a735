package blob

import (
	"context"
	"fmt"
	"io"
)

// ErrorCode классифицирует ошибки хранилища небольшим набором кодов
type ErrorCode string

const (
	CodeUnauthorized    ErrorCode = "unauthorized"
	CodeQuotaExceeded   ErrorCode = "quota-exceeded"
	CodeUnauthenticated ErrorCode = "unauthenticated"
	CodeUnknown         ErrorCode = "unknown"
)

// StorageError carries the backend failure code along with the original message
type StorageError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %s", e.Code, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ProgressFunc reports transferred and total bytes during an upload
type ProgressFunc func(transferred, total int64)

// Storage определяет интерфейс для загрузки файлов в удаленное хранилище
type Storage interface {
	// Upload загружает объект по указанному ключу и возвращает постоянный URL.
	// Ошибки возвращаются как *StorageError с кодом бэкенда.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string, onProgress ProgressFunc) (string, error)
}
