package post

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
	postrepo "github.com/bulatminnakhmetov/vitrina-backend/internal/repository/post"
	"github.com/bulatminnakhmetov/vitrina-backend/internal/service/upload"
)

// Максимальный суммарный размер multipart-формы
const maxFormSize = 256 << 20 // 256 MB

// UploadService определяет интерфейс пайплайна публикации поста
type UploadService interface {
	Run(ctx context.Context, ownerID int, metadata upload.PostMetadata, images, videos []*media.Asset, onProgress upload.ProgressFunc) (*postrepo.Post, error)
}

// PostRepository определяет интерфейс чтения постов
type PostRepository interface {
	GetPostByID(postID int) (*postrepo.Post, error)
	GetPostsByOwner(ownerID int) ([]postrepo.Post, error)
}

// PostHandler handles requests for post operations
type PostHandler struct {
	uploadService UploadService
	posts         PostRepository
	progress      *ProgressHub
}

// NewPostHandler creates a new instance of PostHandler
func NewPostHandler(uploadService UploadService, posts PostRepository, progress *ProgressHub) *PostHandler {
	return &PostHandler{
		uploadService: uploadService,
		posts:         posts,
		progress:      progress,
	}
}

// @Summary      Create post
// @Description  Upload media files and create a post
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Param        title        formData  string  true   "Post title"
// @Param        description  formData  string  false  "Post description"
// @Param        upload_id    formData  string  false  "Client-chosen id for progress tracking"
// @Param        images       formData  file    false  "Image files"
// @Param        videos       formData  file    false  "Video files"
// @Success      201  {object}  PostResponse
// @Failure      400  {string}  string  "Invalid input"
// @Failure      401  {string}  string  "Unauthorized"
// @Failure      500  {string}  string  "Internal server error"
// @Router       /posts [post]
// @Security     BearerAuth
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	// Get user ID from context (set by auth middleware)
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		http.Error(w, "Could not parse form", http.StatusBadRequest)
		return
	}

	images, err := readAssets(r.MultipartForm.File["images"], media.KindImage)
	if err != nil {
		http.Error(w, "Could not read image file", http.StatusBadRequest)
		return
	}
	videos, err := readAssets(r.MultipartForm.File["videos"], media.KindVideo)
	if err != nil {
		http.Error(w, "Could not read video file", http.StatusBadRequest)
		return
	}

	metadata := upload.PostMetadata{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	// Клиент выбирает upload_id сам и подписывается на прогресс по WebSocket
	var onProgress upload.ProgressFunc
	uploadID := r.FormValue("upload_id")
	if uploadID != "" && h.progress != nil {
		onProgress = func(p float64) {
			h.progress.Publish(uploadID, p)
		}
		defer h.progress.Finish(uploadID)
	}

	post, err := h.uploadService.Run(r.Context(), userID, metadata, images, videos, onProgress)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ToPostResponse(post))
}

// @Summary      Get post
// @Description  Get a post by id
// @Tags         posts
// @Produce      json
// @Param        postID  path  int  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      404  {string}  string  "Post not found"
// @Router       /posts/{postID} [get]
// @Security     BearerAuth
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(chi.URLParam(r, "postID"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := h.posts.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, postrepo.ErrPostNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToPostResponse(post))
}

// @Summary      List own posts
// @Description  Get all posts of the authenticated user
// @Tags         posts
// @Produce      json
// @Success      200  {array}  PostResponse
// @Failure      401  {string}  string  "Unauthorized"
// @Router       /posts [get]
// @Security     BearerAuth
func (h *PostHandler) GetMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	posts, err := h.posts.GetPostsByOwner(userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for i := range posts {
		response = append(response, ToPostResponse(&posts[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// readAssets читает файлы формы в память
func readAssets(headers []*multipart.FileHeader, kind media.Kind) ([]*media.Asset, error) {
	var assets []*media.Asset
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}

		assets = append(assets, &media.Asset{
			Name:        header.Filename,
			Kind:        kind,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return assets, nil
}

// writeUploadError переводит таксономию ошибок пайплайна в HTTP-статусы
func writeUploadError(w http.ResponseWriter, err error) {
	var uploadErr *upload.Error
	if !errors.As(err, &uploadErr) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch uploadErr.Kind {
	case upload.ErrorValidation:
		http.Error(w, uploadErr.Message, http.StatusBadRequest)
	case upload.ErrorUnauthenticated:
		http.Error(w, uploadErr.Message, http.StatusUnauthorized)
	case upload.ErrorUnauthorized:
		http.Error(w, uploadErr.Message, http.StatusForbidden)
	case upload.ErrorQuotaExceeded:
		http.Error(w, uploadErr.Message, http.StatusInsufficientStorage)
	default:
		http.Error(w, uploadErr.Message, http.StatusInternalServerError)
	}
}
