package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/pkg/auth"
)

type userRepoStub struct {
	nextID uint
	users  map[uint]models.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{nextID: 1, users: make(map[uint]models.User)}
}

func (r *userRepoStub) Create(ctx context.Context, user *models.User, role models.Role) error {
	user.ID = r.nextID
	r.nextID++
	user.Profile = &models.Profile{ID: user.ID, UserID: user.ID, Role: role}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepoStub) FindByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *userRepoStub) FindByUsername(ctx context.Context, username string) (models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *userRepoStub) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *userRepoStub) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *userRepoStub) Delete(ctx context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *userRepoStub) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	for _, user := range r.users {
		if user.Username == username && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepoStub) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	if email == "" {
		return false, nil
	}
	for _, user := range r.users {
		if user.Email == email && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepoStub) ResolveProfile(ctx context.Context, userID uint) (models.Profile, error) {
	user, ok := r.users[userID]
	if !ok {
		return models.Profile{}, gorm.ErrRecordNotFound
	}
	if user.Profile == nil {
		user.Profile = &models.Profile{UserID: userID, Role: models.RoleStudent}
		r.users[userID] = user
	}
	return *user.Profile, nil
}

func (r *userRepoStub) SetRole(ctx context.Context, userID uint, role models.Role) (models.Profile, error) {
	profile, err := r.ResolveProfile(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	profile.Role = role
	user := r.users[userID]
	user.Profile = &profile
	r.users[userID] = user
	return profile, nil
}

func testTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tokens, err := auth.NewTokenManager(auth.TokenManagerConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "servicedesk-test",
	})
	require.NoError(t, err)
	return tokens
}

func TestAuthServiceStudentRegistrationAssignsStudentRole(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewAuthService(repo, testTokenManager(t), testValidator(), testLogger())

	user, err := svc.RegisterStudent(context.Background(), dto.StudentRegisterRequest{
		Username: "amina",
		Password: "correct-horse",
		Email:    "amina@example.edu",
	})
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	require.Equal(t, models.RoleStudent, user.Profile.Role)

	stored := repo.users[user.ID]
	require.NotEqual(t, "correct-horse", stored.PasswordHash)
}

func TestAuthServiceRegistrationRejectsDuplicates(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewAuthService(repo, testTokenManager(t), testValidator(), testLogger())

	_, err := svc.RegisterStudent(context.Background(), dto.StudentRegisterRequest{
		Username: "amina", Password: "correct-horse", Email: "amina@example.edu",
	})
	require.NoError(t, err)

	_, err = svc.RegisterStudent(context.Background(), dto.StudentRegisterRequest{
		Username: "amina", Password: "battery-staple", Email: "other@example.edu",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.RegisterStudent(context.Background(), dto.StudentRegisterRequest{
		Username: "someone", Password: "battery-staple", Email: "amina@example.edu",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceStaffRegistrationParsesRole(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewAuthService(repo, testTokenManager(t), testValidator(), testLogger())

	user, err := svc.RegisterStaff(context.Background(), dto.StaffRegisterRequest{
		Username: "registrar", Password: "battery-staple", Role: "staff_registrar",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleStaffRegistrar, user.Profile.Role)

	_, err = svc.RegisterStaff(context.Background(), dto.StaffRegisterRequest{
		Username: "nobody", Password: "battery-staple", Role: "JANITOR",
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthServiceLoginAndRefresh(t *testing.T) {
	repo := newUserRepoStub()
	tokens := testTokenManager(t)
	svc := NewAuthService(repo, tokens, testValidator(), testLogger())

	_, err := svc.RegisterStudent(context.Background(), dto.StudentRegisterRequest{
		Username: "amina", Password: "correct-horse",
	})
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), dto.LoginRequest{Username: "amina", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := tokens.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "amina", claims.Username)
	require.Equal(t, models.RoleStudent, claims.Role)

	refreshed, err := svc.Refresh(context.Background(), dto.RefreshRequest{Refresh: pair.RefreshToken})
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewAuthService(repo, testTokenManager(t), testValidator(), testLogger())

	_, err := svc.RegisterStudent(context.Background(), dto.StudentRegisterRequest{
		Username: "amina", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "amina", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
