package chatclient

import (
	"context"
	"encoding/json"
	"sync"

	"messenger/internal/realtime"
	"messenger/pkg/logger"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

// MessageAPI — REST-операции, нужные сессии. *API реализует интерфейс;
// тесты подставляют фейк.
type MessageAPI interface {
	Messages(ctx context.Context, senderID, receiverID int64) ([]Message, error)
	SendMessage(ctx context.Context, senderID, receiverID int64, text string) (*Message, error)
	EditMessage(ctx context.Context, id int64, text string) (*Message, error)
	DeleteMessage(ctx context.Context, id int64) error
	UploadImages(ctx context.Context, senderID, receiverID int64, files []UploadFile) (*Message, error)
}

// Emitter — исходящая сторона живого канала.
type Emitter interface {
	Emit(event string, data any) error
}

// Session — состояние одной вкладки чата. Владеет буфером сообщений
// выбранной беседы и сверяет историю с живыми событиями: newMessage
// применяется идемпотентным upsert-ом, deleteMessage — удалением с no-op
// для неизвестных id, поэтому порядок прихода истории и событий не важен.
type Session struct {
	mu sync.Mutex

	userID  int64
	friend  int64
	room    string
	state   State
	buffer  *Buffer
	api     MessageAPI
	emitter Emitter
	log     logger.Logger

	// onUpdate вызывается (под блокировкой снято) после каждого изменения буфера
	onUpdate func()
}

func NewSession(userID int64, api MessageAPI, emitter Emitter, log logger.Logger) *Session {
	return &Session{
		userID:  userID,
		state:   StateIdle,
		buffer:  NewBuffer(),
		api:     api,
		emitter: emitter,
		log:     log,
	}
}

// OnUpdate регистрирует уведомление об изменении буфера (для UI).
func (s *Session) OnUpdate(fn func()) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Messages()
}

// Select переключает беседу: вычисляет токен комнаты, включает подписку
// (joinRoom до запроса истории, чтобы не потерять событие в гонке с
// загрузкой) и асинхронно тянет историю. Поздний ответ за брошенную
// комнату отбрасывается по сравнению токена на момент получения.
func (s *Session) Select(ctx context.Context, friendID int64) {
	room := realtime.RoomKey(s.userID, friendID)

	s.mu.Lock()
	s.friend = friendID
	s.room = room
	s.state = StateLoading
	s.buffer = NewBuffer()
	s.mu.Unlock()

	if err := s.emitter.Emit(realtime.EventJoinRoom, room); err != nil {
		// Комната недоступна — история все равно загрузится, живые
		// события догонят после переподключения
		s.log.Warn("Failed to join room", "room", room, "error", err)
	}

	go s.loadHistory(ctx, friendID, room)
}

func (s *Session) loadHistory(ctx context.Context, friendID int64, room string) {
	history, err := s.api.Messages(ctx, s.userID, friendID)

	s.mu.Lock()
	if s.room != room {
		// Пользователь уже переключился, поздний результат не применяем
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to load history", "room", room, "error", err)
		return
	}
	s.buffer.Reset(history)
	s.state = StateReady
	notify := s.onUpdate
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// HandleFrame применяет входящий кадр живого канала к буферу.
func (s *Session) HandleFrame(frame realtime.Frame) {
	switch frame.Event {
	case realtime.EventNewMessage:
		var msg Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			s.log.Warn("Invalid newMessage payload", "error", err)
			return
		}
		s.applyUpsert(msg)

	case realtime.EventDeleteMessage:
		var id int64
		if err := json.Unmarshal(frame.Data, &id); err != nil {
			s.log.Warn("Invalid deleteMessage payload", "error", err)
			return
		}
		s.applyRemove(id)
	}
}

func (s *Session) applyUpsert(msg Message) {
	s.mu.Lock()
	// Событие из прежней комнаты (членство аддитивно) — игнорируем
	if realtime.RoomKey(msg.SenderID, msg.ReceiverID) != s.room {
		s.mu.Unlock()
		return
	}
	s.buffer.Upsert(msg)
	notify := s.onUpdate
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (s *Session) applyRemove(id int64) {
	s.mu.Lock()
	// Чужой или уже отсутствующий id — безвредный no-op
	s.buffer.Remove(id)
	notify := s.onUpdate
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Send создает сообщение через REST, применяет ответ к своему буферу
// (не дожидаясь эха брокера) и публикует событие в комнату. Ошибка
// публикации не откатывает запись: сообщение уже долговечно.
func (s *Session) Send(ctx context.Context, text string) (*Message, error) {
	s.mu.Lock()
	friend, room := s.friend, s.room
	s.mu.Unlock()

	msg, err := s.api.SendMessage(ctx, s.userID, friend, text)
	if err != nil {
		return nil, err
	}

	s.applyUpsert(*msg)
	s.emit(realtime.EventSendMessage, realtime.MessageEnvelope{
		ReceiverID: room,
		Message:    mustMarshal(msg),
	})

	return msg, nil
}

func (s *Session) Edit(ctx context.Context, id int64, text string) (*Message, error) {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()

	msg, err := s.api.EditMessage(ctx, id, text)
	if err != nil {
		return nil, err
	}

	s.applyUpsert(*msg)
	s.emit(realtime.EventUpdateMessage, realtime.MessageEnvelope{
		ReceiverID: room,
		Message:    mustMarshal(msg),
	})

	return msg, nil
}

func (s *Session) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()

	if err := s.api.DeleteMessage(ctx, id); err != nil {
		return err
	}

	s.applyRemove(id)
	s.emit(realtime.EventDeleteMessage, realtime.DeleteEnvelope{
		ReceiverID: room,
		IDMsg:      id,
	})

	return nil
}

func (s *Session) Upload(ctx context.Context, files []UploadFile) (*Message, error) {
	s.mu.Lock()
	friend, room := s.friend, s.room
	s.mu.Unlock()

	msg, err := s.api.UploadImages(ctx, s.userID, friend, files)
	if err != nil {
		return nil, err
	}

	s.applyUpsert(*msg)
	s.emit(realtime.EventSendMessage, realtime.MessageEnvelope{
		ReceiverID: room,
		Message:    mustMarshal(msg),
	})

	return msg, nil
}

// emit — fire-and-forget публикация в живой канал; деградация транспорта
// логируется и глотается.
func (s *Session) emit(event string, data any) {
	if err := s.emitter.Emit(event, data); err != nil {
		s.log.Warn("Failed to emit event", "event", event, "error", err)
	}
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// Message всегда сериализуем
		panic(err)
	}
	return raw
}
