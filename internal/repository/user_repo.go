package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"muhasebe-backend/internal/common"
	"muhasebe-backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateByTelegramID resolves the account for an inbound bot message,
// creating it on first contact.
func (r *UserRepository) GetOrCreateByTelegramID(telegramID, name string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "telegram_id = ?", telegramID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		ID:         uuid.New(),
		TelegramID: &telegramID,
		Name:       name,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	if err := r.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Created concurrently by a parallel update; fetch it.
			if ferr := r.db.First(&user, "telegram_id = ?", telegramID).Error; ferr == nil {
				return &user, nil
			}
		}
		return nil, err
	}
	return &user, nil
}
