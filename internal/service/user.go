package service

import (
	"strings"

	"challenge_web/internal/models"
	"challenge_web/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser 創建新用戶。信箱規範化為小寫後儲存，
// 角色沒有指定時默認為一般用戶。
func (s *UserService) CreateUser(user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return s.userRepo.Create(user)
}

// GetUserByEmail 以信箱查詢用戶，大小寫不影響查詢結果
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	return s.userRepo.FindByEmail(normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
