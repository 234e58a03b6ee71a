package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whutmovie/internal/models"
	"whutmovie/internal/repository"
	"whutmovie/internal/utils"

	"github.com/sirupsen/logrus"
)

const maxUsernameLength = 64

type CreateUserInput struct {
	Username string
	Password string
}

// UpdateUserInput changes whichever fields are non-nil.
type UpdateUserInput struct {
	Username *string
	Password *string
}

type UserService interface {
	List(ctx context.Context) ([]models.AdminUser, error)
	Get(ctx context.Context, id string) (*models.AdminUser, error)
	Create(ctx context.Context, input CreateUserInput) (*models.AdminUser, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*models.AdminUser, error)
	// Delete refuses to remove the last admin or the actor's own account.
	Delete(ctx context.Context, actor *Principal, id string) error
	HashPassword(password string) (string, error)
}

type userService struct {
	repo       repository.AdminUserRepository
	bcryptCost int
	logger     *logrus.Logger
}

func NewUserService(repo repository.AdminUserRepository, bcryptCost int, logger *logrus.Logger) UserService {
	return &userService{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *userService) List(ctx context.Context) ([]models.AdminUser, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.AdminUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, "admin user")
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*models.AdminUser, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{Username: username, PasswordHash: hash}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, userConflict(fromRepository(err, "admin user"))
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("Admin user created")
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.AdminUser, error) {
	if input.Username == nil && input.Password == nil {
		return nil, invalid("", "No fields to update")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, "admin user")
	}

	if input.Username != nil {
		username, err := normalizeUsername(*input.Username)
		if err != nil {
			return nil, err
		}
		user.Username = username
	}
	if input.Password != nil {
		if err := checkPassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := s.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, userConflict(fromRepository(err, "admin user"))
	}

	s.logger.WithField("user_id", user.ID).Info("Admin user updated")
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor *Principal, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fromRepository(err, "admin user")
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}
	if count <= 1 {
		return lastAdminError()
	}
	if actor != nil && actor.UserID == id {
		return &InvariantError{Message: "Cannot delete your own account while logged in"}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLastRecord) {
			return lastAdminError()
		}
		return fromRepository(err, "admin user")
	}

	s.logger.WithField("user_id", id).Info("Admin user deleted")
	return nil
}

func (s *userService) HashPassword(password string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if username == "" {
		return "", invalid("username", "Username is required")
	}
	if len(username) > maxUsernameLength {
		return "", invalid("username", "Username must be at most %d characters", maxUsernameLength)
	}
	return username, nil
}

func checkPassword(password string) error {
	if len(password) < utils.MinPasswordLength {
		return invalid("password", "Password must be at least %d characters", utils.MinPasswordLength)
	}
	return nil
}

func userConflict(err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) && conflict.Field == "username" {
		conflict.Message = "Username already exists"
	}
	return err
}

func lastAdminError() error {
	return &InvariantError{Message: "Cannot delete the last admin user"}
}
