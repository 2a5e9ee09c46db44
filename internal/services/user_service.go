// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	Phone       string                 `json:"phone,omitempty" validate:"omitempty,max=20"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

type UserSearchParams struct {
	utils.PaginationParams
	Role   *models.UserRole   `json:"role,omitempty"`
	Status *models.UserStatus `json:"status,omitempty"`
}

type RoleRequest struct {
	Name          string      `json:"name" validate:"required,max=50"`
	Description   string      `json:"description,omitempty"`
	PermissionIDs []uuid.UUID `json:"permission_ids,omitempty"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").Preload("Roles.Permissions").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(id uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.ProfileData != nil {
		updates["profile_data"] = models.JSONB(req.ProfileData)
	}
	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	s.db.First(&user, "id = ?", id)
	return &user, nil
}

func (s *UserService) ListUsers(params UserSearchParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "username", "email", "last_login_at"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *UserService) SetUserStatus(id uuid.UUID, status models.UserStatus) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update user status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) AddPoints(id uuid.UUID, points int) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", points))
	if res.Error != nil {
		return fmt.Errorf("failed to add points: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Roles and permissions

func (s *UserService) CreateRole(req *RoleRequest) (*models.Role, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	role := &models.Role{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}
		if len(req.PermissionIDs) > 0 {
			var permissions []models.Permission
			if err := tx.Find(&permissions, "id IN ?", req.PermissionIDs).Error; err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			if err := tx.Model(role).Association("Permissions").Replace(permissions); err != nil {
				return fmt.Errorf("failed to assign permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Permissions").First(role, "id = ?", role.ID)
	return role, nil
}

func (s *UserService) ListRoles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Preload("Permissions").Order("created_at ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	return roles, nil
}

func (s *UserService) ListPermissions() ([]models.Permission, error) {
	var permissions []models.Permission
	if err := s.db.Order("module ASC, operation ASC").Find(&permissions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	return permissions, nil
}

func (s *UserService) AssignRoles(userID uuid.UUID, roleIDs []uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var roles []models.Role
	if err := s.db.Find(&roles, "id IN ?", roleIDs).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&user).Association("Roles").Replace(roles); err != nil {
		return fmt.Errorf("failed to assign roles: %w", err)
	}
	return nil
}
