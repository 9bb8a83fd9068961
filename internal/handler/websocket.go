package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"messenger/internal/realtime"
	"messenger/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	broker *realtime.Broker
	log    logger.Logger
}

func NewWebSocketHandler(broker *realtime.Broker, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		broker: broker,
		log:    log,
	}
}

// HandleChat апгрейдит запрос до websocket и обслуживает подключение
// до разрыва; членство в комнатах снимает Detach внутри Serve.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := realtime.NewConn(conn, h.broker, h.log)
	h.log.Debug("Websocket connected", "conn", client.ID(), "remote", c.ClientIP())
	client.Serve()
}
