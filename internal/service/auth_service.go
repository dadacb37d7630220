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
	"github.com/student-affairs/servicedesk-api/pkg/auth"
)

var (
	// ErrInvalidCredentials indicates a failed username/password exchange.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidRole indicates an unknown role value.
	ErrInvalidRole = errors.New("invalid role")
)

// AuthService covers registration and credential exchange.
type AuthService interface {
	RegisterStudent(ctx context.Context, payload dto.StudentRegisterRequest) (dto.UserResponse, error)
	RegisterStaff(ctx context.Context, payload dto.StaffRegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (auth.TokenPair, error)
	Refresh(ctx context.Context, payload dto.RefreshRequest) (auth.TokenPair, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    *auth.TokenManager
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService builds the auth service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

// RegisterStudent creates an account with the Student role. Open endpoint;
// the role is never caller-controlled here.
func (s *authService) RegisterStudent(ctx context.Context, payload dto.StudentRegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.createAccount(ctx, accountDetails{
		Username:  payload.Username,
		Password:  payload.Password,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	}, models.RoleStudent)
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("student registered")

	return dto.NewUserResponse(user), nil
}

// RegisterStaff creates an account with an explicit role. Admin only at the
// route level.
func (s *authService) RegisterStaff(ctx context.Context, payload dto.StaffRegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil {
		return dto.UserResponse{}, ErrInvalidRole
	}

	user, err := s.createAccount(ctx, accountDetails{
		Username:  payload.Username,
		Password:  payload.Password,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	}, role)
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", role.String()).Msg("staff account registered")

	return dto.NewUserResponse(user), nil
}

type accountDetails struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

func (s *authService) createAccount(ctx context.Context, details accountDetails, role models.Role) (models.User, error) {
	taken, err := s.users.UsernameTaken(ctx, details.Username, 0)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrUsernameTaken
	}

	taken, err = s.users.EmailTaken(ctx, details.Email, 0)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(details.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     details.Username,
		Email:        details.Email,
		PasswordHash: hash,
		FirstName:    details.FirstName,
		LastName:     details.LastName,
	}

	if err := s.users.Create(ctx, &user, role); err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (auth.TokenPair, error) {
	if err := s.validator.Struct(payload); err != nil {
		return auth.TokenPair{}, err
	}

	user, err := s.users.FindByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, payload.Password) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	role := models.RoleStudent
	if user.Profile != nil {
		role = user.Profile.Role
	}

	pair, err := s.tokens.Issue(user.ID, user.Username, role)
	if err != nil {
		return auth.TokenPair{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user logged in")

	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, payload dto.RefreshRequest) (auth.TokenPair, error) {
	if err := s.validator.Struct(payload); err != nil {
		return auth.TokenPair{}, err
	}

	userID, err := s.tokens.ValidateRefresh(payload.Refresh)
	if err != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, err
	}

	role := models.RoleStudent
	if user.Profile != nil {
		role = user.Profile.Role
	}

	return s.tokens.Issue(user.ID, user.Username, role)
}
