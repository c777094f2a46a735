package post

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	ErrPostNotFound = errors.New("post not found")
)

// Post представляет опубликованную запись с медиафайлами
type Post struct {
	ID           int       `json:"id"`
	OwnerID      int       `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MainMediaURL string    `json:"main_media_url"`
	MediaURLs    []string  `json:"media_urls"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PostgresRepository implements the post repository over Postgres
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository создает новый экземпляр репозитория постов
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// CreatePost сохраняет пост в базе данных и заполняет ID и таймстемпы
func (r *PostgresRepository) CreatePost(post *Post) error {
	query := `
        INSERT INTO posts (owner_id, title, description, main_media_url, media_urls)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `

	err := r.db.QueryRow(
		query,
		post.OwnerID,
		post.Title,
		post.Description,
		post.MainMediaURL,
		pq.Array(post.MediaURLs),
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}

	return nil
}

// GetPostByID получает пост по ID
func (r *PostgresRepository) GetPostByID(postID int) (*Post, error) {
	query := `
        SELECT id, owner_id, title, description, main_media_url, media_urls, created_at, updated_at
        FROM posts
        WHERE id = $1
    `

	var post Post
	err := r.db.QueryRow(query, postID).Scan(
		&post.ID,
		&post.OwnerID,
		&post.Title,
		&post.Description,
		&post.MainMediaURL,
		pq.Array(&post.MediaURLs),
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// GetPostsByOwner получает все посты пользователя
func (r *PostgresRepository) GetPostsByOwner(ownerID int) ([]Post, error) {
	query := `
        SELECT id, owner_id, title, description, main_media_url, media_urls, created_at, updated_at
        FROM posts
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		err := rows.Scan(
			&post.ID,
			&post.OwnerID,
			&post.Title,
			&post.Description,
			&post.MainMediaURL,
			pq.Array(&post.MediaURLs),
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// DeletePost удаляет пост пользователя
func (r *PostgresRepository) DeletePost(ownerID, postID int) error {
	_, err := r.db.Exec("DELETE FROM posts WHERE id = $1 AND owner_id = $2", postID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	// Файлы в хранилище не удаляем: URL может использоваться где-то еще,
	// неиспользуемые объекты вычищаются периодической задачей
	return nil
}
