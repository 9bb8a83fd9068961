package service

import (
	"messenger/internal/config"
	"messenger/internal/repository"
	"messenger/pkg/logger"
)

type Services struct {
	Auth      AuthService
	User      UserService
	Message   MessageService
	Storage   StorageService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) (*Services, error) {
	storage, err := NewStorageService(cfg.Upload, log)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth:      NewAuthService(repos.User, cfg.JWT, log),
		User:      NewUserService(repos.User, log),
		Message:   NewMessageService(repos.Message, storage, log),
		Storage:   storage,
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}, nil
}
