package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/bulatminnakhmetov/vitrina-backend/internal/compression"
	"github.com/bulatminnakhmetov/vitrina-backend/internal/database"
	authhandler "github.com/bulatminnakhmetov/vitrina-backend/internal/handler/auth"
	posthandler "github.com/bulatminnakhmetov/vitrina-backend/internal/handler/post"
	"github.com/bulatminnakhmetov/vitrina-backend/internal/media"
	postrepo "github.com/bulatminnakhmetov/vitrina-backend/internal/repository/post"
	userrepo "github.com/bulatminnakhmetov/vitrina-backend/internal/repository/user"
	authservice "github.com/bulatminnakhmetov/vitrina-backend/internal/service/auth"
	"github.com/bulatminnakhmetov/vitrina-backend/internal/service/upload"
	"github.com/bulatminnakhmetov/vitrina-backend/internal/storage/blob"
)

func main() {
	// .env удобен при локальной разработке, в проде его просто нет
	_ = godotenv.Load()

	// Загрузка конфигурации из переменных окружения
	dbConfig := &database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "vitrina"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-replace-in-production")
	serverPort := getEnv("SERVER_PORT", "8080")
	migrationsPath := getEnv("MIGRATIONS_PATH", "migrations")

	minioConfig := blob.MinioConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    getEnv("MINIO_BUCKET", "vitrina-media"),
		UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		PublicURL: getEnv("MINIO_PUBLIC_URL", "http://localhost:9000"),
	}

	// Подключение к базе данных и применение миграций
	db, err := database.NewConnection(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, migrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Подключение к хранилищу файлов
	storage, err := blob.NewMinioStorage(minioConfig)
	if err != nil {
		log.Fatalf("Failed to connect to storage: %v", err)
	}

	// Аутентификация
	userRepository := userrepo.NewPostgresUserRepository(db)
	authService := authservice.NewAuthService(userRepository, jwtSecret)
	authHandler := authhandler.NewAuthHandler(authService)

	// Пайплайн публикации постов
	postRepository := postrepo.NewPostgresRepository(db)
	fileUploader := upload.NewFileUploader(storage)
	batchUploader := upload.NewBatchUploader(fileUploader)

	constraints := media.Constraints{
		MaxWidth:  getEnvAsInt("COMPRESSION_MAX_WIDTH", 1920),
		MaxHeight: getEnvAsInt("COMPRESSION_MAX_HEIGHT", 1080),
		Quality:   0.85,
		MaxSizeMB: 5,
	}

	orchestrator := upload.NewOrchestrator(batchUploader, postRepository, func() (upload.Compressor, error) {
		return compression.NewImagingCompressor(), nil
	}, constraints)

	progressHub := posthandler.NewProgressHub()
	postHandler := posthandler.NewPostHandler(orchestrator, postRepository, progressHub)

	// Создание роутера
	r := chi.NewRouter()

	// Базовые middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(10 * time.Minute))

	// Публичные маршруты аутентификации
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/refresh", authHandler.RefreshToken)
	})

	// Защищенные маршруты (требуют аутентификации)
	r.Group(func(r chi.Router) {
		r.Use(authHandler.AuthMiddleware)

		r.Route("/api/posts", func(r chi.Router) {
			r.Post("/", postHandler.CreatePost)
			r.Get("/", postHandler.GetMyPosts)
			r.Get("/progress", progressHub.ServeWS)
			r.Get("/{postID}", postHandler.GetPost)
		})
	})

	// Запуск сервера с корректной обработкой graceful shutdown
	server := &http.Server{
		Addr:    ":" + serverPort,
		Handler: r,
	}

	// Запуск сервера в горутине
	go func() {
		log.Printf("Server is starting on port %s", serverPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on port %s: %v\n", serverPort, err)
		}
	}()

	// Канал для обработки сигналов завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Ожидание сигнала
	<-stop

	// Корректное завершение работы сервера
	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// Вспомогательные функции для работы с переменными окружения
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return fallback
}
