package realtime

import (
	"messenger/pkg/logger"
)

// Subscriber — живое подключение с точки зрения брокера. Send не должен
// блокироваться; false означает, что подключение больше не принимает
// кадры и будет отцеплено от всех комнат.
type Subscriber interface {
	ID() string
	Send(payload []byte) bool
}

type joinRequest struct {
	sub  Subscriber
	room string
	done chan struct{}
}

type publishRequest struct {
	room    string
	payload []byte
	origin  Subscriber // nil для серверных публикаций
	done    chan struct{}
}

type detachRequest struct {
	sub  Subscriber
	done chan struct{}
}

// Broker держит членство комнат и рассылает события их участникам.
// Все таблицы принадлежат единственной горутине Run: операции приходят
// по каналам и обрабатываются до конца строго по одной, поэтому блокировки
// не нужны, а порядок публикаций внутри комнаты сохраняется от Publish
// до доставки.
type Broker struct {
	rooms   map[string]map[Subscriber]struct{}
	members map[Subscriber]map[string]struct{}

	join    chan joinRequest
	publish chan publishRequest
	detach  chan detachRequest
	quit    chan struct{}
	done    chan struct{}

	log logger.Logger
}

func NewBroker(log logger.Logger) *Broker {
	return &Broker{
		rooms:   make(map[string]map[Subscriber]struct{}),
		members: make(map[Subscriber]map[string]struct{}),
		join:    make(chan joinRequest),
		publish: make(chan publishRequest),
		detach:  make(chan detachRequest),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		log:     log,
	}
}

// Run — цикл обработки событий брокера. Запускается один раз в отдельной
// горутине и работает до Stop.
func (b *Broker) Run() {
	defer close(b.done)

	for {
		select {
		case <-b.quit:
			return
		case req := <-b.join:
			b.handleJoin(req.sub, req.room)
			close(req.done)
		case req := <-b.publish:
			b.handlePublish(req.room, req.payload, req.origin)
			close(req.done)
		case req := <-b.detach:
			b.handleDetach(req.sub)
			close(req.done)
		}
	}
}

func (b *Broker) Stop() {
	close(b.quit)
	<-b.done
}

// Join добавляет подключение в комнату. Идемпотентна; членство аддитивно,
// при смене собеседника старые комнаты остаются до отключения.
func (b *Broker) Join(sub Subscriber, room string) {
	req := joinRequest{sub: sub, room: room, done: make(chan struct{})}
	select {
	case b.join <- req:
		<-req.done
	case <-b.quit:
	}
}

// Publish доставляет payload всем текущим участникам комнаты. Пустая или
// несуществующая комната — не ошибка. Если задан origin, рассылка
// выполняется только когда само подключение-отправитель состоит в комнате.
func (b *Broker) Publish(room string, payload []byte, origin Subscriber) {
	req := publishRequest{room: room, payload: payload, origin: origin, done: make(chan struct{})}
	select {
	case b.publish <- req:
		<-req.done
	case <-b.quit:
	}
}

// Detach убирает подключение из всех комнат (обработка disconnect).
func (b *Broker) Detach(sub Subscriber) {
	req := detachRequest{sub: sub, done: make(chan struct{})}
	select {
	case b.detach <- req:
		<-req.done
	case <-b.quit:
	}
}

func (b *Broker) handleJoin(sub Subscriber, room string) {
	if b.rooms[room] == nil {
		b.rooms[room] = make(map[Subscriber]struct{})
	}
	if b.members[sub] == nil {
		b.members[sub] = make(map[string]struct{})
	}
	b.rooms[room][sub] = struct{}{}
	b.members[sub][room] = struct{}{}

	b.log.Debug("Subscriber joined room", "subscriber", sub.ID(), "room", room, "members", len(b.rooms[room]))
}

func (b *Broker) handlePublish(room string, payload []byte, origin Subscriber) {
	subs := b.rooms[room]
	if len(subs) == 0 {
		return
	}

	if origin != nil {
		if _, ok := subs[origin]; !ok {
			b.log.Warn("Publish rejected: origin is not in the room", "subscriber", origin.ID(), "room", room)
			return
		}
	}

	var failed []Subscriber
	for sub := range subs {
		if !sub.Send(payload) {
			failed = append(failed, sub)
		}
	}

	// Подключения с переполненным буфером отцепляем целиком,
	// дальнейшая доставка им бессмысленна.
	for _, sub := range failed {
		b.log.Warn("Subscriber dropped: send buffer full", "subscriber", sub.ID())
		b.handleDetach(sub)
	}
}

func (b *Broker) handleDetach(sub Subscriber) {
	for room := range b.members[sub] {
		delete(b.rooms[room], sub)
		if len(b.rooms[room]) == 0 {
			delete(b.rooms, room)
		}
	}
	delete(b.members, sub)
}
