package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/repository"
)

// ErrUserNotFound indicates the requested account does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserService covers profile/identity reads and admin account management.
type UserService interface {
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
	UpdateMe(ctx context.Context, userID uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	ResolveRole(ctx context.Context, userID uint) (models.Role, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	AdminUpdate(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint) error
	SetRole(ctx context.Context, userID uint, payload dto.SetRoleRequest) (dto.SetRoleResponse, error)
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds the user service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	return s.Get(ctx, userID)
}

func (s *userService) UpdateMe(ctx context.Context, userID uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.Email != nil && *payload.Email != user.Email {
		taken, err := s.users.EmailTaken(ctx, *payload.Email, user.ID)
		if err != nil {
			return dto.UserResponse{}, err
		}
		if taken {
			return dto.UserResponse{}, ErrEmailTaken
		}
		user.Email = *payload.Email
	}
	if payload.FirstName != nil {
		user.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		user.LastName = *payload.LastName
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

// ResolveRole returns the principal's role, creating a missing profile with
// the Student default. Looked up per request so role changes take effect
// without reissuing tokens.
func (s *userService) ResolveRole(ctx context.Context, userID uint) (models.Role, error) {
	profile, err := s.users.ResolveProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

// AdminUpdate edits username and email only, rejecting duplicates.
func (s *userService) AdminUpdate(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.Username != nil && *payload.Username != user.Username {
		taken, err := s.users.UsernameTaken(ctx, *payload.Username, user.ID)
		if err != nil {
			return dto.UserResponse{}, err
		}
		if taken {
			return dto.UserResponse{}, ErrUsernameTaken
		}
		user.Username = *payload.Username
	}

	if payload.Email != nil && *payload.Email != user.Email {
		taken, err := s.users.EmailTaken(ctx, *payload.Email, user.ID)
		if err != nil {
			return dto.UserResponse{}, err
		}
		if taken {
			return dto.UserResponse{}, ErrEmailTaken
		}
		user.Email = *payload.Email
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user updated by admin")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted by admin")
	return nil
}

// SetRole force-assigns a role, creating the profile when missing.
func (s *userService) SetRole(ctx context.Context, userID uint, payload dto.SetRoleRequest) (dto.SetRoleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SetRoleResponse{}, err
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil {
		return dto.SetRoleResponse{}, ErrInvalidRole
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SetRoleResponse{}, ErrUserNotFound
		}
		return dto.SetRoleResponse{}, err
	}

	profile, err := s.users.SetRole(ctx, userID, role)
	if err != nil {
		return dto.SetRoleResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Str("role", role.String()).Msg("role assigned")

	return dto.SetRoleResponse{UserID: userID, NewRole: profile.Role}, nil
}
