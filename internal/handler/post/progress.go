package post

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgressHub раздает прогресс загрузок подписчикам по WebSocket.
// Подписка идет по upload_id, который клиент выбирает сам и передает
// в форме создания поста
type ProgressHub struct {
	mu          sync.Mutex
	subscribers map[string][]*websocket.Conn
}

// NewProgressHub создает новый экземпляр ProgressHub
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subscribers: make(map[string][]*websocket.Conn),
	}
}

// ServeWS обрабатывает подключение подписчика прогресса
//
// @Summary      Upload progress feed
// @Description  Subscribe to upload progress events over WebSocket
// @Tags         posts
// @Param        upload_id  query  string  true  "Upload id chosen by the client"
// @Success      101  {string}  string  "Switching protocols"
// @Failure      400  {string}  string  "Missing upload_id"
// @Router       /posts/progress [get]
// @Security     BearerAuth
func (h *ProgressHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	uploadID := r.URL.Query().Get("upload_id")
	if uploadID == "" {
		http.Error(w, "upload_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade progress connection: %v", err)
		return
	}

	h.mu.Lock()
	h.subscribers[uploadID] = append(h.subscribers[uploadID], conn)
	h.mu.Unlock()
}

// Publish отправляет значение прогресса всем подписчикам upload_id.
// Отвалившиеся соединения убираются из списка
func (h *ProgressHub) Publish(uploadID string, percent float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.subscribers[uploadID]
	if len(conns) == 0 {
		return
	}

	msg := ProgressMessage{UploadID: uploadID, Progress: percent}

	alive := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			continue
		}
		alive = append(alive, conn)
	}
	h.subscribers[uploadID] = alive
}

// Finish закрывает все подписки upload_id после завершения запуска
func (h *ProgressHub) Finish(uploadID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.subscribers[uploadID] {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}
	delete(h.subscribers, uploadID)
}
