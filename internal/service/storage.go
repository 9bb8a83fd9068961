package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"messenger/internal/config"
	"messenger/pkg/logger"
)

// StorageService — коллаборатор блоб-хранилища: принимает бинарный файл,
// возвращает путь, по которому файл отдается статикой.
type StorageService interface {
	Store(filename string, content io.Reader) (string, error)
}

type diskStorageService struct {
	cfg config.UploadConfig
	log logger.Logger
}

func NewStorageService(cfg config.UploadConfig, log logger.Logger) (StorageService, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &diskStorageService{cfg: cfg, log: log}, nil
}

func (s *diskStorageService) Store(filename string, content io.Reader) (string, error) {
	// Имя файла клиентское, доверять ему нельзя — оставляем только расширение
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	dst, err := os.Create(filepath.Join(s.cfg.Dir, name))
	if err != nil {
		s.log.Error("Failed to create upload file", "error", err)
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(content, s.cfg.MaxFileSize)); err != nil {
		s.log.Error("Failed to write upload file", "error", err)
		return "", err
	}

	return s.cfg.BasePath + "/" + name, nil
}
