package review

import (
	"context"
	"idea-review-platform/internal/domain"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, review *domain.Review) error
	HasReviewed(ctx context.Context, ideaID, reviewerID uint64, stage domain.Stage) (bool, error)
	CountForStage(ctx context.Context, ideaID uint64, stage domain.Stage) (int64, error)
	ListReviewable(ctx context.Context, reviewerID uint64, track domain.Track, stage domain.Stage) ([]domain.Idea, error)
	ListReviewedByUser(ctx context.Context, reviewerID uint64, stage domain.Stage, limit int) ([]ReviewedItem, error)
	ListForIdea(ctx context.Context, ideaID uint64, stage domain.Stage) ([]domain.Review, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Create inserts the review row. The unique index on (idea, reviewer,
// stage) turns a concurrent duplicate into gorm.ErrDuplicatedKey.
func (r *RepositoryImpl) Create(ctx context.Context, review *domain.Review) error {
	review.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *RepositoryImpl) HasReviewed(ctx context.Context, ideaID, reviewerID uint64, stage domain.Stage) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("idea_id = ? AND reviewer_id = ? AND stage = ?", ideaID, reviewerID, stage).
		Count(&count).Error
	return count > 0, err
}

func (r *RepositoryImpl) CountForStage(ctx context.Context, ideaID uint64, stage domain.Stage) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("idea_id = ? AND stage = ?", ideaID, stage).
		Count(&count).Error
	return count, err
}

// ListReviewable returns ideas in the stage's review status, excluding the
// reviewer's own and ones they already reviewed in that stage. FIFO by
// submission time so the oldest submission waits the least.
func (r *RepositoryImpl) ListReviewable(ctx context.Context, reviewerID uint64, track domain.Track, stage domain.Stage) ([]domain.Idea, error) {
	var ideas []domain.Idea
	err := r.db.WithContext(ctx).
		Where("track = ? AND status = ? AND owner_id <> ?", track, stage.ReviewStatus(), reviewerID).
		Where("id NOT IN (?)",
			r.db.Model(&domain.Review{}).
				Select("idea_id").
				Where("reviewer_id = ? AND stage = ?", reviewerID, stage),
		).
		Order("submitted_at ASC").
		Find(&ideas).Error
	return ideas, err
}

type ReviewedItem struct {
	Review domain.Review `json:"review"`
	Idea   domain.Idea   `json:"idea"`
}

func (r *RepositoryImpl) ListReviewedByUser(ctx context.Context, reviewerID uint64, stage domain.Stage, limit int) ([]ReviewedItem, error) {
	var reviews []domain.Review
	err := r.db.WithContext(ctx).
		Select("reviews.*").
		Joins("JOIN ideas ON ideas.id = reviews.idea_id").
		Where("reviews.reviewer_id = ? AND reviews.stage = ?", reviewerID, stage).
		Order("ideas.updated_at DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil || len(reviews) == 0 {
		return []ReviewedItem{}, err
	}

	ideaIDs := make([]uint64, 0, len(reviews))
	for _, rv := range reviews {
		ideaIDs = append(ideaIDs, rv.IdeaID)
	}
	var ideas []domain.Idea
	if err := r.db.WithContext(ctx).Where("id IN ?", ideaIDs).Find(&ideas).Error; err != nil {
		return nil, err
	}
	ideasByID := make(map[uint64]domain.Idea, len(ideas))
	for _, i := range ideas {
		ideasByID[i.ID] = i
	}

	items := make([]ReviewedItem, 0, len(reviews))
	for _, rv := range reviews {
		items = append(items, ReviewedItem{Review: rv, Idea: ideasByID[rv.IdeaID]})
	}
	return items, nil
}

func (r *RepositoryImpl) ListForIdea(ctx context.Context, ideaID uint64, stage domain.Stage) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND stage = ?", ideaID, stage).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}
