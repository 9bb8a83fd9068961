package chatclient

// Buffer — упорядоченный набор сообщений беседы: map по id для O(1)
// upsert/remove плюс порядок вставки, совпадающий с порядком по
// createdAt (история приходит отсортированной, живые события — новее
// хвоста).
type Buffer struct {
	order []int64
	byID  map[int64]Message
}

func NewBuffer() *Buffer {
	return &Buffer{byID: make(map[int64]Message)}
}

// Reset целиком заменяет содержимое буфера выбранной историей.
func (b *Buffer) Reset(history []Message) {
	b.order = b.order[:0]
	b.byID = make(map[int64]Message, len(history))
	for _, msg := range history {
		b.Upsert(msg)
	}
}

// Upsert применяет newMessage: запись с тем же id заменяется на месте
// (редактирование и повторная доставка), новая — дописывается в конец.
// Повторное применение того же события не меняет буфер.
func (b *Buffer) Upsert(msg Message) {
	if _, ok := b.byID[msg.ID]; !ok {
		b.order = append(b.order, msg.ID)
	}
	b.byID[msg.ID] = msg
}

// Remove применяет deleteMessage; отсутствующий id — no-op.
func (b *Buffer) Remove(id int64) {
	if _, ok := b.byID[id]; !ok {
		return
	}
	delete(b.byID, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *Buffer) Contains(id int64) bool {
	_, ok := b.byID[id]
	return ok
}

func (b *Buffer) Len() int {
	return len(b.order)
}

// Messages возвращает сообщения в порядке отображения.
func (b *Buffer) Messages() []Message {
	out := make([]Message, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.byID[id])
	}
	return out
}
