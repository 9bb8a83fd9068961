package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"messenger/internal/domain"
	apperrors "messenger/pkg/errors"
	"messenger/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	GetBetween(ctx context.Context, userA, userB int64) ([]*domain.Message, error)
	UpdateText(ctx context.Context, id int64, text string) (*domain.Message, error)
	Delete(ctx context.Context, id int64) error
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (text, sender_id, receiver_id, image_paths, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		message.Text, message.SenderID, message.ReceiverID, message.ImagePaths,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create message", "error", err)
		return err
	}

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT id, text, sender_id, receiver_id, image_paths, created_at, updated_at
		FROM messages
		WHERE id = $1
	`
	return r.scanMessage(r.db.QueryRow(ctx, query, id))
}

// GetBetween возвращает переписку пары в обоих направлениях,
// по возрастанию created_at.
func (r *messageRepository) GetBetween(ctx context.Context, userA, userB int64) ([]*domain.Message, error) {
	query := `
		SELECT id, text, sender_id, receiver_id, image_paths, created_at, updated_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, userA, userB)
	if err != nil {
		r.log.Error("Failed to get messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	messages := []*domain.Message{}
	for rows.Next() {
		message := &domain.Message{}
		err := rows.Scan(
			&message.ID, &message.Text, &message.SenderID, &message.ReceiverID,
			&message.ImagePaths, &message.CreatedAt, &message.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

func (r *messageRepository) UpdateText(ctx context.Context, id int64, text string) (*domain.Message, error) {
	query := `
		UPDATE messages
		SET text = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, text, sender_id, receiver_id, image_paths, created_at, updated_at
	`
	return r.scanMessage(r.db.QueryRow(ctx, query, id, text))
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete message", "error", err, "message_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}

	return nil
}

func (r *messageRepository) scanMessage(row pgx.Row) (*domain.Message, error) {
	message := &domain.Message{}
	err := row.Scan(
		&message.ID, &message.Text, &message.SenderID, &message.ReceiverID,
		&message.ImagePaths, &message.CreatedAt, &message.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err)
		return nil, err
	}
	return message, nil
}
