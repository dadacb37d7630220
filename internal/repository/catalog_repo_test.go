package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	return setupTestDB(t, &models.Category{}, &models.RequestType{}, &models.Request{}, &models.RequestHistory{})
}

func TestRequestTypeRepositoryListFiltersByCategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRequestTypeRepository(db)

	registrar := models.Category{Name: "Registrar"}
	finance := models.Category{Name: "Finance"}
	require.NoError(t, db.Create(&registrar).Error)
	require.NoError(t, db.Create(&finance).Error)

	require.NoError(t, repo.Create(context.Background(), &models.RequestType{CategoryID: registrar.ID, Name: "Transcript Copy"}))
	require.NoError(t, repo.Create(context.Background(), &models.RequestType{CategoryID: finance.ID, Name: "Tuition Waiver"}))

	all, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := repo.List(context.Background(), &registrar.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "Transcript Copy", filtered[0].Name)
}

func TestRequestTypeRepositoryDeleteClearsRequestReferences(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRequestTypeRepository(db)

	category := models.Category{Name: "Registrar"}
	require.NoError(t, db.Create(&category).Error)
	requestType := models.RequestType{CategoryID: category.ID, Name: "Transcript Copy"}
	require.NoError(t, repo.Create(context.Background(), &requestType))

	request := models.Request{StudentID: 1, RequestTypeID: &requestType.ID, Details: "copy please", Status: models.StatusPending}
	require.NoError(t, db.Create(&request).Error)

	require.NoError(t, repo.Delete(context.Background(), requestType.ID))

	var survived models.Request
	require.NoError(t, db.First(&survived, request.ID).Error)
	require.Nil(t, survived.RequestTypeID)

	require.ErrorIs(t, repo.Delete(context.Background(), requestType.ID), gorm.ErrRecordNotFound)
}
