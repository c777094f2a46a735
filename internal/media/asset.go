package media

import (
	"path/filepath"
	"strings"
)

// Kind разделяет медиафайлы на изображения и видео
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset представляет локальный медиафайл, выбранный пользователем.
// Содержимое читается, но никогда не изменяется этим подсистемой.
type Asset struct {
	Name        string
	Kind        Kind
	ContentType string
	Data        []byte
}

// Size возвращает размер файла в байтах
func (a *Asset) Size() int64 {
	return int64(len(a.Data))
}

// Ext возвращает расширение файла в нижнем регистре, включая точку
func (a *Asset) Ext() string {
	return strings.ToLower(filepath.Ext(a.Name))
}

// Constraints задает ограничения для сжатия изображений.
// Передается один раз на запуск пайплайна и не меняется.
type Constraints struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64 // 0.0–1.0
	MaxSizeMB float64
}
