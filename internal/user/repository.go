package user

import (
	"context"
	"idea-review-platform/internal/domain"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *domain.User) error
	FindByEmail(email string) (*domain.User, error)
	FindByID(id uint64) (*domain.User, error)
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
	IncreaseTokenVersion(id uint64) error
	Deactivate(id uint64) error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new user repository
func NewRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, err
}

func (r *UserRepositoryImpl) FindByID(id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.First(&user, id).Error
	return &user, err
}

func (r *UserRepositoryImpl) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("is_active = true AND (name ILIKE ? OR email ILIKE ?)", "%"+query+"%", "%"+query+"%").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) IncreaseTokenVersion(id uint64) error {
	return r.db.Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
}

func (r *UserRepositoryImpl) Deactivate(id uint64) error {
	return r.db.Model(&domain.User{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
