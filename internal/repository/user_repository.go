package repository

import (
	"challenge_web/internal/models"
	"challenge_web/internal/storage"
)

type UserRepository interface {
	Create(user *models.User) error
	// FindByEmail 以信箱查詢用戶，信箱由服務層規範化為小寫
	FindByEmail(email string) (*models.User, error)
}

type userRepository struct {
	db *storage.PostgresDB
}

func NewUserRepository(db *storage.PostgresDB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
