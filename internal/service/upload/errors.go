package upload

import (
	"errors"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/storage/blob"
)

// ErrorKind классифицирует ошибки пайплайна загрузки
type ErrorKind string

const (
	// ErrorValidation — некорректный ввод, обнаруживается до обращения к хранилищу
	ErrorValidation ErrorKind = "validation"
	// ErrorUnauthorized — у пользователя нет прав на запись в хранилище
	ErrorUnauthorized ErrorKind = "storage_unauthorized"
	// ErrorQuotaExceeded — исчерпана квота хранилища
	ErrorQuotaExceeded ErrorKind = "storage_quota_exceeded"
	// ErrorUnauthenticated — пользователь не аутентифицирован в хранилище
	ErrorUnauthenticated ErrorKind = "storage_unauthenticated"
	// ErrorUnknown — прочие ошибки хранилища
	ErrorUnknown ErrorKind = "storage_unknown"
	// ErrorRecordCreation — все файлы загружены, но создать запись не удалось
	ErrorRecordCreation ErrorKind = "record_creation"
)

// Error — ошибка пайплайна с типом и сообщением, пригодным для показа пользователю
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newValidationError(message string) *Error {
	return &Error{Kind: ErrorValidation, Message: message}
}

// mapStorageError переводит коды бэкенда в таксономию пайплайна.
// Сообщения фиксированные и действенные, исходная ошибка сохраняется в Err.
func mapStorageError(err error) *Error {
	var serr *blob.StorageError
	if !errors.As(err, &serr) {
		return &Error{Kind: ErrorUnknown, Message: "upload failed: " + err.Error(), Err: err}
	}

	switch serr.Code {
	case blob.CodeUnauthorized:
		return &Error{Kind: ErrorUnauthorized, Message: "storage access denied: check write permissions for authenticated users", Err: err}
	case blob.CodeQuotaExceeded:
		return &Error{Kind: ErrorQuotaExceeded, Message: "storage quota exceeded", Err: err}
	case blob.CodeUnauthenticated:
		return &Error{Kind: ErrorUnauthenticated, Message: "must be logged in to upload files", Err: err}
	default:
		return &Error{Kind: ErrorUnknown, Message: "upload failed: " + serr.Message, Err: err}
	}
}
