package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"messenger/internal/domain"
	"messenger/internal/repository"
	apperrors "messenger/pkg/errors"
	"messenger/pkg/logger"
)

// UploadFile — один файл из multipart-запроса.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// MessageService проверяет входные данные и делегирует долговечность
// хранилищу. Публикацией события в брокер занимается вызывающая сторона
// и только после успешного возврата отсюда: запись — источник истины,
// живой канал лишь ускорение.
type MessageService interface {
	History(ctx context.Context, userA, userB int64) ([]*domain.Message, error)
	Create(ctx context.Context, senderID, receiverID int64, text string) (*domain.Message, error)
	Edit(ctx context.Context, id int64, text string) (*domain.Message, error)
	Delete(ctx context.Context, id int64) error
	Upload(ctx context.Context, senderID, receiverID int64, files []UploadFile) (*domain.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	storage     StorageService
	log         logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, storage StorageService, log logger.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		storage:     storage,
		log:         log,
	}
}

// History возвращает переписку пары по возрастанию времени создания.
// Отсутствие сообщений — пустой список, не ошибка.
func (s *messageService) History(ctx context.Context, userA, userB int64) ([]*domain.Message, error) {
	if userA <= 0 || userB <= 0 {
		return nil, fmt.Errorf("%w: sender and receiver ids must be positive", apperrors.ErrValidation)
	}
	return s.messageRepo.GetBetween(ctx, userA, userB)
}

func (s *messageService) Create(ctx context.Context, senderID, receiverID int64, text string) (*domain.Message, error) {
	if senderID <= 0 || receiverID <= 0 {
		return nil, fmt.Errorf("%w: sender and receiver ids must be positive", apperrors.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", apperrors.ErrValidation)
	}

	message := &domain.Message{
		Text:       text,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *messageService) Edit(ctx context.Context, id int64, text string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", apperrors.ErrValidation)
	}

	// Явный lookup, чтобы отличать NotFound от прочих ошибок
	if _, err := s.messageRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.messageRepo.UpdateText(ctx, id, text)
}

func (s *messageService) Delete(ctx context.Context, id int64) error {
	return s.messageRepo.Delete(ctx, id)
}

// Upload сохраняет файлы в блоб-хранилище и создает сообщение с пустым
// текстом и путями к изображениям.
func (s *messageService) Upload(ctx context.Context, senderID, receiverID int64, files []UploadFile) (*domain.Message, error) {
	if senderID <= 0 || receiverID <= 0 {
		return nil, fmt.Errorf("%w: sender and receiver ids must be positive", apperrors.ErrValidation)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", apperrors.ErrValidation)
	}

	imagePaths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := s.storage.Store(file.Name, file.Content)
		if err != nil {
			s.log.Error("Failed to store uploaded file", "error", err, "name", file.Name)
			return nil, apperrors.ErrInternalServer
		}
		imagePaths = append(imagePaths, path)
	}

	message := &domain.Message{
		Text:       "",
		SenderID:   senderID,
		ReceiverID: receiverID,
		ImagePaths: imagePaths,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}
