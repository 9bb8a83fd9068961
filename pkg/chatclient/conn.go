package chatclient

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"messenger/internal/realtime"
)

// Conn — клиентская сторона живого канала поверх websocket.
type Conn struct {
	mu sync.Mutex // сериализует записи
	ws *websocket.Conn
}

func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{ws: ws}, nil
}

// Emit отправляет кадр {event, data}.
func (c *Conn) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame := realtime.Frame{Event: event, Data: raw}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(frame)
}

// Listen читает кадры и передает их обработчику до разрыва подключения
// или отмены контекста.
func (c *Conn) Listen(ctx context.Context, handle func(realtime.Frame)) error {
	go func() {
		<-ctx.Done()
		_ = c.ws.Close()
	}()

	for {
		var frame realtime.Frame
		if err := c.ws.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		handle(frame)
	}
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
