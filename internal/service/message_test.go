package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"messenger/internal/domain"
	apperrors "messenger/pkg/errors"
	"messenger/pkg/logger"
)

type fakeMessageRepo struct {
	byID   map[int64]*domain.Message
	nextID int64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{byID: make(map[int64]*domain.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	r.nextID++
	message.ID = r.nextID
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt
	clone := *message
	r.byID[message.ID] = &clone
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	msg, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	clone := *msg
	return &clone, nil
}

func (r *fakeMessageRepo) GetBetween(ctx context.Context, userA, userB int64) ([]*domain.Message, error) {
	result := []*domain.Message{}
	for id := int64(1); id <= r.nextID; id++ {
		msg, ok := r.byID[id]
		if !ok {
			continue
		}
		direct := msg.SenderID == userA && msg.ReceiverID == userB
		reverse := msg.SenderID == userB && msg.ReceiverID == userA
		if direct || reverse {
			clone := *msg
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) UpdateText(ctx context.Context, id int64, text string) (*domain.Message, error) {
	msg, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	msg.Text = text
	msg.UpdatedAt = time.Now()
	clone := *msg
	return &clone, nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return apperrors.ErrMessageNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeStorage struct {
	stored []string
	fail   bool
}

func (s *fakeStorage) Store(filename string, content io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("disk full")
	}
	path := "/uploads/" + strconv.Itoa(len(s.stored)) + "-" + filename
	s.stored = append(s.stored, path)
	return path, nil
}

func newMessageServiceForTest(repo *fakeMessageRepo, storage *fakeStorage) MessageService {
	return NewMessageService(repo, storage, logger.New("error"))
}

func TestMessageServiceCreate(t *testing.T) {
	req := require.New(t)
	svc := newMessageServiceForTest(newFakeMessageRepo(), &fakeStorage{})
	ctx := context.Background()

	msg, err := svc.Create(ctx, 1, 2, "hello")
	req.NoError(err)
	req.NotZero(msg.ID)
	req.Equal(int64(1), msg.SenderID)
	req.Equal(int64(2), msg.ReceiverID)

	_, err = svc.Create(ctx, 0, 2, "hello")
	req.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, 1, 2, "   ")
	req.ErrorIs(err, apperrors.ErrValidation)
}

func TestMessageServiceHistory(t *testing.T) {
	req := require.New(t)
	repo := newFakeMessageRepo()
	svc := newMessageServiceForTest(repo, &fakeStorage{})
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, 2, "from 1")
	req.NoError(err)
	_, err = svc.Create(ctx, 2, 1, "from 2")
	req.NoError(err)
	_, err = svc.Create(ctx, 1, 3, "other pair")
	req.NoError(err)

	history, err := svc.History(ctx, 1, 2)
	req.NoError(err)
	req.Len(history, 2)
	req.Equal("from 1", history[0].Text)
	req.Equal("from 2", history[1].Text)

	// История несуществующей пары — пустой список, не ошибка
	history, err = svc.History(ctx, 5, 6)
	req.NoError(err)
	req.NotNil(history)
	req.Empty(history)

	_, err = svc.History(ctx, -1, 2)
	req.ErrorIs(err, apperrors.ErrValidation)
}

func TestMessageServiceEdit(t *testing.T) {
	req := require.New(t)
	repo := newFakeMessageRepo()
	svc := newMessageServiceForTest(repo, &fakeStorage{})
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 2, "before")
	req.NoError(err)

	edited, err := svc.Edit(ctx, created.ID, "after")
	req.NoError(err)
	req.Equal("after", edited.Text)
	req.Equal(created.ID, edited.ID)

	_, err = svc.Edit(ctx, 999, "after")
	req.ErrorIs(err, apperrors.ErrMessageNotFound)

	_, err = svc.Edit(ctx, created.ID, "")
	req.ErrorIs(err, apperrors.ErrValidation)
}

func TestMessageServiceDelete(t *testing.T) {
	req := require.New(t)
	repo := newFakeMessageRepo()
	svc := newMessageServiceForTest(repo, &fakeStorage{})
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 2, "doomed")
	req.NoError(err)

	req.NoError(svc.Delete(ctx, created.ID))
	req.ErrorIs(svc.Delete(ctx, created.ID), apperrors.ErrMessageNotFound)
}

func TestMessageServiceUpload(t *testing.T) {
	req := require.New(t)
	repo := newFakeMessageRepo()
	storage := &fakeStorage{}
	svc := newMessageServiceForTest(repo, storage)
	ctx := context.Background()

	files := []UploadFile{
		{Name: "a.png"},
		{Name: "b.jpg"},
	}

	msg, err := svc.Upload(ctx, 1, 2, files)
	req.NoError(err)
	req.Empty(msg.Text)
	req.Len(msg.ImagePaths, 2)
	req.Equal(storage.stored, msg.ImagePaths)

	_, err = svc.Upload(ctx, 1, 2, nil)
	req.ErrorIs(err, apperrors.ErrValidation)
}

func TestMessageServiceUploadStorageFailure(t *testing.T) {
	req := require.New(t)
	repo := newFakeMessageRepo()
	svc := newMessageServiceForTest(repo, &fakeStorage{fail: true})

	_, err := svc.Upload(context.Background(), 1, 2, []UploadFile{{Name: "a.png"}})
	req.ErrorIs(err, apperrors.ErrInternalServer)
	req.Empty(repo.byID)
}
