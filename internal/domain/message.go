package domain

import "time"

// Message — единица переписки между двумя пользователями.
// Сообщение с sender == receiver допустимо ("сохраненные сообщения").
type Message struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	ImagePaths []string  `json:"imagePaths,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
