package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

const (
	minUsername = 3
	maxUsername = 50
	minPassword = 8
	// bcrypt ignores input past 72 bytes
	maxPassword = 72
)

type Service struct {
	repo   interfaces.UserRepository
	cost   int
	logger logger.Logger
}

func NewService(repo interfaces.UserRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost, logger: logger}
}

func (s *Service) Register(ctx context.Context, cmd interfaces.RegisterUserCommand) (*domain.User, error) {
	username := strings.TrimSpace(cmd.Username)
	if n := utf8.RuneCountInString(username); n < minUsername || n > maxUsername {
		return nil, fmt.Errorf("%w: username must be %d-%d characters", domain.ErrValidation, minUsername, maxUsername)
	}
	if utf8.RuneCountInString(cmd.Password) < minPassword || len(cmd.Password) > maxPassword {
		return nil, fmt.Errorf("%w: password must be at least %d characters and at most %d bytes",
			domain.ErrValidation, minPassword, maxPassword)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    domain.Now(),
	}
	// The unique index still guards against a concurrent registration.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user_registered", "User registered", "", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}
