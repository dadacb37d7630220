package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func setupRequestTestDB(t *testing.T) *gorm.DB {
	return setupTestDB(t,
		&models.User{}, &models.Profile{},
		&models.Category{}, &models.RequestType{},
		&models.Request{}, &models.RequestHistory{}, &models.Attachment{},
	)
}

func seedStudent(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID, Role: models.RoleStudent}).Error)
	return user
}

func TestRequestRepositoryCreateWritesSubmissionHistory(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRequestRepository(db)
	student := seedStudent(t, db, "amina")

	request := models.Request{StudentID: student.ID, Details: "transcript copy", Status: models.StatusPending}
	require.NoError(t, repo.Create(context.Background(), &request, student.ID))
	require.NotZero(t, request.ID)

	var entries []models.RequestHistory
	require.NoError(t, db.Where("request_id = ?", request.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, "Submitted", entries[0].Action)
	require.NotNil(t, entries[0].UserID)
	require.Equal(t, student.ID, *entries[0].UserID)
}

func TestRequestRepositoryUpdateStatusAppendsHistoryAtomically(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRequestRepository(db)
	student := seedStudent(t, db, "amina")
	staff := seedStudent(t, db, "registrar")

	request := models.Request{StudentID: student.ID, Details: "transcript copy", Status: models.StatusPending}
	require.NoError(t, repo.Create(context.Background(), &request, student.ID))

	updated, err := repo.UpdateStatus(context.Background(), request.ID, models.StatusInProgress, staff.ID, Unrestricted())
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, updated.Status)

	var entries []models.RequestHistory
	require.NoError(t, db.Where("request_id = ?", request.ID).Order("id ASC").Find(&entries).Error)
	require.Len(t, entries, 2)
	require.Equal(t, "Status changed to IN_PROGRESS", entries[1].Action)
	require.Equal(t, "PENDING", entries[1].Metadata["from"])
	require.Equal(t, "IN_PROGRESS", entries[1].Metadata["to"])
}

func TestRequestRepositoryScopeHidesForeignRows(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRequestRepository(db)
	owner := seedStudent(t, db, "amina")
	other := seedStudent(t, db, "bilal")

	request := models.Request{StudentID: owner.ID, Details: "dorm change", Status: models.StatusPending}
	require.NoError(t, repo.Create(context.Background(), &request, owner.ID))

	_, err := repo.FindScoped(context.Background(), request.ID, OwnedBy(other.ID))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.UpdateStatus(context.Background(), request.ID, models.StatusApproved, other.ID, OwnedBy(other.ID))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The failed scoped update must not leave a history entry behind.
	count, err := repo.CountHistory(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	owned, err := repo.List(context.Background(), OwnedBy(owner.ID))
	require.NoError(t, err)
	require.Len(t, owned, 1)

	foreign, err := repo.List(context.Background(), OwnedBy(other.ID))
	require.NoError(t, err)
	require.Empty(t, foreign)
}

func TestRequestRepositoryDetailOrdersHistory(t *testing.T) {
	db := setupRequestTestDB(t)
	repo := NewRequestRepository(db)
	student := seedStudent(t, db, "amina")

	request := models.Request{StudentID: student.ID, Details: "enrollment letter", Status: models.StatusPending}
	require.NoError(t, repo.Create(context.Background(), &request, student.ID))

	_, err := repo.UpdateStatus(context.Background(), request.ID, models.StatusInProgress, student.ID, Unrestricted())
	require.NoError(t, err)
	_, err = repo.UpdateStatus(context.Background(), request.ID, models.StatusApproved, student.ID, Unrestricted())
	require.NoError(t, err)

	detail, err := repo.Detail(context.Background(), request.ID, OwnedBy(student.ID))
	require.NoError(t, err)
	require.Len(t, detail.History, 3)
	require.Equal(t, "Submitted", detail.History[0].Action)
	require.Equal(t, "Status changed to APPROVED", detail.History[2].Action)
	require.NotNil(t, detail.Student)
	require.Equal(t, "amina", detail.Student.Username)
}
