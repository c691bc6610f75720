package idea

import (
	"context"
	"idea-review-platform/internal/domain"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, ownerID uint64, idea *domain.Idea) error
	FindByID(ctx context.Context, id uint64) (*domain.Idea, error)
	Save(ctx context.Context, idea *domain.Idea) error
	ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]domain.Idea, Meta, error)
	IncrementLike(ctx context.Context, id uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, ownerID uint64, idea *domain.Idea) error {
	idea.OwnerID = ownerID
	idea.Status = domain.StatusDraft
	idea.CreatedAt = time.Now().UTC()
	idea.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(idea).Error
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Idea, error) {
	var idea domain.Idea
	err := r.db.WithContext(ctx).First(&idea, id).Error
	return &idea, err
}

func (r *RepositoryImpl) Save(ctx context.Context, idea *domain.Idea) error {
	idea.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(idea).Error
}

type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

func (r *RepositoryImpl) ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]domain.Idea, Meta, error) {
	var ideas []domain.Idea
	var totalRecords int64

	if err := r.db.WithContext(ctx).Model(&domain.Idea{}).
		Where("owner_id = ?", ownerID).
		Count(&totalRecords).Error; err != nil {
		return ideas, Meta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&ideas).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return ideas, Meta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *RepositoryImpl) IncrementLike(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Model(&domain.Idea{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
