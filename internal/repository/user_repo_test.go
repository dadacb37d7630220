package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	return setupTestDB(t, &models.User{}, &models.Profile{})
}

func TestUserRepositoryCreateAttachesProfile(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Username: "registrar", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), &user, models.RoleStaffRegistrar))
	require.NotNil(t, user.Profile)
	require.Equal(t, models.RoleStaffRegistrar, user.Profile.Role)

	loaded, err := repo.FindByUsername(context.Background(), "registrar")
	require.NoError(t, err)
	require.NotNil(t, loaded.Profile)
	require.Equal(t, models.RoleStaffRegistrar, loaded.Profile.Role)
}

func TestUserRepositoryResolveProfileRepairsMissingRow(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)

	// A legacy account without a profile row.
	user := models.User{Username: "legacy", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	profile, err := repo.ResolveProfile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, profile.Role)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// A second resolve reuses the repaired row.
	again, err := repo.ResolveProfile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, profile.ID, again.ID)
}

func TestUserRepositorySetRoleCreatesAndUpdates(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Username: "amina", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	profile, err := repo.SetRole(context.Background(), user.ID, models.RoleAdvisor)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdvisor, profile.Role)

	same, err := repo.SetRole(context.Background(), user.ID, models.RoleAdvisor)
	require.NoError(t, err)
	require.Equal(t, profile.ID, same.ID)
}

func TestUserRepositoryTakenChecksExcludeSelf(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Username: "amina", Email: "amina@example.edu", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), &user, models.RoleStudent))

	taken, err := repo.UsernameTaken(context.Background(), "amina", 0)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.UsernameTaken(context.Background(), "amina", user.ID)
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = repo.EmailTaken(context.Background(), "amina@example.edu", 0)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.EmailTaken(context.Background(), "", 0)
	require.NoError(t, err)
	require.False(t, taken)
}

func TestUserRepositoryAllowsMultipleUsersWithoutEmail(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)

	first := models.User{Username: "amina", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), &first, models.RoleStudent))

	second := models.User{Username: "bilal", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), &second, models.RoleStudent))

	dup := models.User{Username: "chidi", Email: "amina@example.edu", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), &dup, models.RoleStudent))
	clash := models.User{Username: "dele", Email: "amina@example.edu", PasswordHash: "x"}
	require.Error(t, repo.Create(context.Background(), &clash, models.RoleStudent))
}

func TestUserRepositoryDeleteRemovesProfile(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Username: "amina", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), &user, models.RoleStudent))

	require.NoError(t, repo.Delete(context.Background(), user.ID))
	require.ErrorIs(t, repo.Delete(context.Background(), user.ID), gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
