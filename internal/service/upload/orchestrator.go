package upload

import (
	"context"
	"log"
	"time"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
	postrepo "github.com/bulatminnakhmetov/vitrina-backend/internal/repository/post"
)

// Папки в хранилище для разных типов медиа
const (
	folderImages = "images"
	folderVideos = "videos"
)

// Таймаут на весь шаг сжатия: если не уложились, используем оригиналы
const compressionTimeout = 30 * time.Second

// Окна прогресса стадий на общей шкале 0–100
const (
	compressionStart = 5.0
	compressionEnd   = 10.0
	imageUploadStart = 10.0
	imageUploadEnd   = 70.0
	videoUploadStart = 70.0
	videoUploadEnd   = 100.0
	recordCreating   = 95.0
	recordDone       = 100.0
)

// runState отражает стадию выполнения одного запуска пайплайна
type runState string

const (
	stateIdle            runState = "idle"
	stateCompressing     runState = "compressing"
	stateUploadingImages runState = "uploading_images"
	stateUploadingVideos runState = "uploading_videos"
	stateCreatingRecord  runState = "creating_record"
	stateDone            runState = "done"
	stateFailed          runState = "failed"
)

// Compressor определяет интерфейс возможности сжатия изображений
type Compressor interface {
	Compress(ctx context.Context, assets []*media.Asset, constraints media.Constraints, onProgress func(float64)) ([]*media.Asset, error)
}

// CompressorFactory разрешает возможность сжатия при создании оркестратора,
// а не через статический импорт. Ошибка фабрики равносильна таймауту:
// пайплайн продолжает работу с оригиналами
type CompressorFactory func() (Compressor, error)

// batchUploader определяет интерфейс конкурентной загрузки набора файлов
type batchUploader interface {
	UploadAll(ctx context.Context, assets []*media.Asset, ownerID int, folder string, onProgress ProgressFunc) ([]string, error)
}

// PostRepository определяет интерфейс для создания записи поста
type PostRepository interface {
	CreatePost(post *postrepo.Post) error
}

// PostMetadata — заполненные пользователем поля поста
type PostMetadata struct {
	Title       string
	Description string
}

// Orchestrator проводит пайплайн публикации: сжатие изображений,
// загрузка изображений, загрузка видео, создание записи
type Orchestrator struct {
	batch             batchUploader
	posts             PostRepository
	compressorFactory CompressorFactory
	constraints       media.Constraints
	compressTimeout   time.Duration
}

// NewOrchestrator создает новый экземпляр Orchestrator
func NewOrchestrator(batch batchUploader, posts PostRepository, compressorFactory CompressorFactory, constraints media.Constraints) *Orchestrator {
	return &Orchestrator{
		batch:             batch,
		posts:             posts,
		compressorFactory: compressorFactory,
		constraints:       constraints,
		compressTimeout:   compressionTimeout,
	}
}

// Run выполняет один запуск пайплайна и возвращает созданный пост.
// onProgress вызывается со значениями 0–100; успешный запуск заканчивается
// ровно одним вызовом со значением 100. Любая ошибка стадии прерывает запуск,
// уже загруженные файлы при этом не удаляются, запись не создается.
func (o *Orchestrator) Run(ctx context.Context, ownerID int, metadata PostMetadata, images, videos []*media.Asset, onProgress ProgressFunc) (*postrepo.Post, error) {
	if len(images) == 0 && len(videos) == 0 {
		return nil, newValidationError("at least one image or video file is required")
	}

	emit := func(p float64) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	run := &run{state: stateIdle}

	var imageURLs, videoURLs []string

	if len(images) > 0 {
		run.to(stateCompressing)
		emit(compressionStart)
		images = o.compressImages(ctx, images, func(p float64) {
			emit(stageProgress(compressionStart, compressionEnd, p))
		})

		run.to(stateUploadingImages)
		urls, err := o.batch.UploadAll(ctx, images, ownerID, folderImages, func(p float64) {
			emit(stageProgress(imageUploadStart, imageUploadEnd, p))
		})
		if err != nil {
			run.fail()
			return nil, err
		}
		imageURLs = urls
	}

	if len(videos) > 0 {
		// Видео загружаются как есть, без сжатия
		run.to(stateUploadingVideos)
		urls, err := o.batch.UploadAll(ctx, videos, ownerID, folderVideos, func(p float64) {
			emit(stageProgress(videoUploadStart, videoUploadEnd, p))
		})
		if err != nil {
			run.fail()
			return nil, err
		}
		videoURLs = urls
	}

	run.to(stateCreatingRecord)
	emit(recordCreating)

	mainURL, additionalURLs := selectMedia(imageURLs, videoURLs)

	post := &postrepo.Post{
		OwnerID:      ownerID,
		Title:        metadata.Title,
		Description:  metadata.Description,
		MainMediaURL: mainURL,
		MediaURLs:    additionalURLs,
	}
	if err := o.posts.CreatePost(post); err != nil {
		run.fail()
		return nil, &Error{Kind: ErrorRecordCreation, Message: "failed to create post record", Err: err}
	}

	emit(recordDone)
	run.to(stateDone)

	return post, nil
}

// compressImages выполняет шаг сжатия с ограничением по времени.
// При таймауте контекст отменяется, чтобы брошенная работа остановилась,
// а пайплайн продолжает с оригинальными файлами
func (o *Orchestrator) compressImages(ctx context.Context, images []*media.Asset, onProgress func(float64)) []*media.Asset {
	if o.compressorFactory == nil {
		return images
	}

	compressor, err := o.compressorFactory()
	if err != nil {
		log.Printf("compression unavailable, uploading originals: %v", err)
		return images
	}

	cctx, cancel := context.WithTimeout(ctx, o.compressTimeout)
	defer cancel()

	type result struct {
		assets []*media.Asset
		err    error
	}
	done := make(chan result, 1)

	go func() {
		assets, err := compressor.Compress(cctx, images, o.constraints, onProgress)
		done <- result{assets: assets, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Printf("compression failed, uploading originals: %v", res.err)
			return images
		}
		return res.assets
	case <-cctx.Done():
		log.Printf("compression timed out, uploading originals")
		return images
	}
}

// stageProgress переводит прогресс стадии 0–100 в общую шкалу
func stageProgress(start, end, p float64) float64 {
	return start + p*(end-start)/100
}

// selectMedia выбирает главный URL и список дополнительных.
// Главным становится первое изображение, а при его отсутствии — первое видео
func selectMedia(imageURLs, videoURLs []string) (string, []string) {
	if len(imageURLs) > 0 {
		additional := make([]string, 0, len(imageURLs)-1+len(videoURLs))
		additional = append(additional, imageURLs[1:]...)
		additional = append(additional, videoURLs...)
		return imageURLs[0], additional
	}
	return videoURLs[0], append([]string{}, videoURLs[1:]...)
}

// run хранит состояние автомата одного запуска
type run struct {
	state runState
}

func (r *run) to(s runState) {
	r.state = s
}

func (r *run) fail() {
	r.state = stateFailed
}
