package api

import (
	"net/http"
	"sync"

	"github.com/NaePawat/zentry-backend-challenge/internal/ingest"
	"github.com/NaePawat/zentry-backend-challenge/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TickFeed fans per-tick summaries out to connected websocket clients. It
// implements ingest.Publisher; a slow or dead client is dropped rather than
// allowed to stall the scheduler.
type TickFeed struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   *zap.Logger
}

func NewTickFeed() *TickFeed {
	return &TickFeed{
		conns: make(map[*websocket.Conn]struct{}),
		log:   logger.Logger(),
	}
}

func NewTickFeedRoutes(handler *gin.RouterGroup, feed *TickFeed) {
	handler.GET("/ws", feed.handleWebSocket)
}

func (f *TickFeed) Publish(s ingest.TickSummary) {
	payload, err := json.Marshal(s)
	if err != nil {
		f.log.Error("failed to marshal tick summary", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.log.Warn("dropping websocket client", zap.Error(err))
			conn.Close()
			delete(f.conns, conn)
		}
	}
}

func (f *TickFeed) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()

	go f.readLoop(conn)
}

// readLoop discards client messages; its purpose is to notice the close.
func (f *TickFeed) readLoop(conn *websocket.Conn) {
	defer func() {
		f.mu.Lock()
		delete(f.conns, conn)
		f.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
