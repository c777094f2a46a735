package post

import (
	"time"

	postrepo "github.com/bulatminnakhmetov/vitrina-backend/internal/repository/post"
)

// PostResponse — пост в ответе API
type PostResponse struct {
	ID           int       `json:"id"`
	OwnerID      int       `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MainMediaURL string    `json:"main_media_url"`
	MediaURLs    []string  `json:"media_urls"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToPostResponse(p *postrepo.Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  p.Description,
		MainMediaURL: p.MainMediaURL,
		MediaURLs:    p.MediaURLs,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ProgressMessage — сообщение о прогрессе загрузки, отправляемое по WebSocket
type ProgressMessage struct {
	UploadID string  `json:"upload_id"`
	Progress float64 `json:"progress"`
}
