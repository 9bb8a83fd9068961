package realtime

import "encoding/json"

// События протокола. Имена совпадают с клиентским контрактом:
// sendMessage и updateMessage с сервера транслируются одинаково — как
// newMessage, клиент применяет их идемпотентным upsert-ом.
const (
	EventJoinRoom      = "joinRoom"
	EventSendMessage   = "sendMessage"
	EventUpdateMessage = "updateMessage"
	EventDeleteMessage = "deleteMessage"
	EventNewMessage    = "newMessage"
)

// Frame — кадр протокола поверх websocket: имя события плюс полезная нагрузка.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// MessageEnvelope — входящая нагрузка sendMessage/updateMessage.
// ReceiverID несет токен комнаты, не id пользователя (исторический
// нейминг исходного протокола).
type MessageEnvelope struct {
	ReceiverID string          `json:"receiverId"`
	Message    json.RawMessage `json:"message"`
}

// DeleteEnvelope — входящая нагрузка deleteMessage.
type DeleteEnvelope struct {
	ReceiverID string `json:"receiverId"`
	IDMsg      int64  `json:"idMsg"`
}

func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

func NewMessageFrame(message json.RawMessage) ([]byte, error) {
	return json.Marshal(Frame{Event: EventNewMessage, Data: message})
}

func DeleteMessageFrame(id int64) ([]byte, error) {
	return EncodeFrame(EventDeleteMessage, id)
}
