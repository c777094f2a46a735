package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// MinioConfig содержит настройки подключения к MinIO
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // базовый URL, по которому объекты доступны снаружи
}

// MinioStorage реализует Storage поверх MinIO/S3
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStorage создает клиент MinIO и убеждается, что бакет существует
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create minio client")
	}

	exists, err := client.BucketExists(context.Background(), cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check bucket")
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, "failed to create bucket")
		}
	}

	return &MinioStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
	}, nil
}

// progressReader оборачивает reader и сообщает о переданных байтах
type progressReader struct {
	reader      io.Reader
	total       int64
	transferred int64
	onProgress  ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.transferred += int64(n)
		if r.onProgress != nil {
			r.onProgress(r.transferred, r.total)
		}
	}
	return n, err
}

// Upload загружает объект в бакет и возвращает публичный URL
func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string, onProgress ProgressFunc) (string, error) {
	pr := &progressReader{reader: reader, total: size, onProgress: onProgress}

	_, err := s.client.PutObject(ctx, s.bucket, key, pr, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", translateMinioError(err)
	}

	return s.objectURL(key), nil
}

func (s *MinioStorage) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
}

// translateMinioError сводит коды ответов MinIO к нашему небольшому набору
func translateMinioError(err error) *StorageError {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied":
		return &StorageError{Code: CodeUnauthorized, Message: resp.Message, Err: err}
	case "QuotaExceeded", "XMinioAdminBucketQuotaExceeded":
		return &StorageError{Code: CodeQuotaExceeded, Message: resp.Message, Err: err}
	case "InvalidAccessKeyId", "AccessKeyDisabled", "SignatureDoesNotMatch":
		return &StorageError{Code: CodeUnauthenticated, Message: resp.Message, Err: err}
	default:
		return &StorageError{Code: CodeUnknown, Message: err.Error(), Err: err}
	}
}
