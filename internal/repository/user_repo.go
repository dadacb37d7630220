package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

// UserRepository handles persistence for accounts and their profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User, role models.Role) error
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	ResolveProfile(ctx context.Context, userID uint) (models.Profile, error)
	SetRole(ctx context.Context, userID uint, role models.Role) (models.Profile, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create persists the account and its profile as a single transaction, so a
// user row can never exist without its role.
func (r *userRepository) Create(ctx context.Context, user *models.User, role models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		profile := models.Profile{UserID: user.ID, Role: role}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		user.Profile = &profile
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Select("Profile").Delete(&models.User{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	if email == "" {
		return false, nil
	}

	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResolveProfile returns the user's profile, creating one with the Student
// role when absent. A missing profile is treated as repairable state, not an
// error.
func (r *userRepository) ResolveProfile(ctx context.Context, userID uint) (models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, err
	}

	profile = models.Profile{UserID: userID, Role: models.RoleStudent}
	if err := r.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// SetRole assigns the role, creating the profile first when missing.
func (r *userRepository) SetRole(ctx context.Context, userID uint, role models.Role) (models.Profile, error) {
	profile, err := r.ResolveProfile(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	if profile.Role == role {
		return profile, nil
	}

	profile.Role = role
	if err := r.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}
