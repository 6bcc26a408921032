package services

import (
	"errors"
	"fmt"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

type UserService interface {
	GetUserByID(db *gorm.DB, userID uuid.UUID) (*models.User, error)
	UpdateProfile(db *gorm.DB, userID uuid.UUID, input UpdateProfileInput) (*models.User, error)
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetUserByID(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, failOp("get user", err)
	}
	return &user, nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(db, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		var existing models.User
		if err := db.Where("username = ? AND id <> ?", *input.Username, userID).First(&existing).Error; err == nil {
			return nil, ErrDuplicateUsername
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failOp("update profile", err)
		}
		if len(*input.Username) < 3 || len(*input.Username) > 50 {
			return nil, fmt.Errorf("%w: username must be 3-50 characters", ErrInvalidInput)
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		var existing models.User
		if err := db.Where("email = ? AND id <> ?", *input.Email, userID).First(&existing).Error; err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failOp("update profile", err)
		}
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}

	if err := db.Save(user).Error; err != nil {
		return nil, failOp("update profile", err)
	}
	return user, nil
}
