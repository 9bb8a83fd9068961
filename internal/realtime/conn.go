package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"messenger/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 << 10
	sendBufferSize = 256
)

// Conn — серверная сторона websocket-подключения. Читающая горутина
// разбирает кадры протокола и передает их брокеру, пишущая — выгружает
// буфер отправки и поддерживает ping/pong.
type Conn struct {
	id     string
	ws     *websocket.Conn
	broker *Broker
	send   chan []byte
	log    logger.Logger
}

func NewConn(ws *websocket.Conn, broker *Broker, log logger.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:     id,
		ws:     ws,
		broker: broker,
		send:   make(chan []byte, sendBufferSize),
		log:    log.With("conn", id),
	}
}

func (c *Conn) ID() string {
	return c.id
}

// Send ставит кадр в очередь отправки, не блокируясь. false — буфер полон,
// брокер отцепит подключение.
func (c *Conn) Send(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Serve запускает пишущую горутину и блокируется в читающем цикле
// до разрыва подключения.
func (c *Conn) Serve() {
	go c.writePump()
	c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.broker.Detach(c)
		close(c.send)
		_ = c.ws.Close()
		c.log.Debug("Connection closed")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket error", "error", err)
			}
			return
		}

		c.handleFrame(raw)
	}
}

// handleFrame разбирает входящий кадр. Некорректный кадр логируется
// и отбрасывается, подключение живет дальше.
func (c *Conn) handleFrame(raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.log.Warn("Invalid frame", "error", err)
		return
	}

	switch frame.Event {
	case EventJoinRoom:
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil || room == "" {
			c.log.Warn("Invalid joinRoom payload", "error", err)
			return
		}
		c.broker.Join(c, room)

	case EventSendMessage, EventUpdateMessage:
		var env MessageEnvelope
		if err := json.Unmarshal(frame.Data, &env); err != nil || env.ReceiverID == "" {
			c.log.Warn("Invalid message envelope", "event", frame.Event, "error", err)
			return
		}
		payload, err := NewMessageFrame(env.Message)
		if err != nil {
			c.log.Warn("Failed to encode newMessage frame", "error", err)
			return
		}
		c.broker.Publish(env.ReceiverID, payload, c)

	case EventDeleteMessage:
		var env DeleteEnvelope
		if err := json.Unmarshal(frame.Data, &env); err != nil || env.ReceiverID == "" {
			c.log.Warn("Invalid delete envelope", "error", err)
			return
		}
		payload, err := DeleteMessageFrame(env.IDMsg)
		if err != nil {
			c.log.Warn("Failed to encode deleteMessage frame", "error", err)
			return
		}
		c.broker.Publish(env.ReceiverID, payload, c)

	default:
		c.log.Warn("Unknown event", "event", frame.Event)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
