package decision

import (
	"context"
	"idea-review-platform/internal/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateAndAdvance(ctx context.Context, decision *domain.Decision) error
	FindForStage(ctx context.Context, ideaID uint64, stage domain.Stage) (*domain.Decision, error)
	ListForIdea(ctx context.Context, ideaID uint64) ([]domain.Decision, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// CreateAndAdvance is the one atomic unit that records a decision and
// moves the idea. The idea row is locked for the duration so a concurrent
// decider re-reads status after this commit; the unique (idea, stage)
// index makes the second insert fail with gorm.ErrDuplicatedKey either way.
func (r *RepositoryImpl) CreateAndAdvance(ctx context.Context, decision *domain.Decision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var idea domain.Idea
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&idea, decision.IdeaID).Error; err != nil {
			return err
		}

		// Re-check under the lock: the first decider may have advanced the
		// idea between our precondition read and this transaction.
		if idea.Status != decision.PreviousStatus {
			return gorm.ErrDuplicatedKey
		}

		decision.CreatedAt = time.Now().UTC()
		if err := tx.Create(decision).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":     decision.NewStatus,
			"updated_at": decision.CreatedAt,
		}
		if decision.NewStatus == domain.StatusStage2Review || decision.NewStatus == domain.StatusApproved {
			updates["current_revision_number"] = gorm.Expr("current_revision_number + 1")
		}

		return tx.Model(&domain.Idea{}).
			Where("id = ?", decision.IdeaID).
			Updates(updates).Error
	})
}

func (r *RepositoryImpl) FindForStage(ctx context.Context, ideaID uint64, stage domain.Stage) (*domain.Decision, error) {
	var d domain.Decision
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND stage = ?", ideaID, stage).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RepositoryImpl) ListForIdea(ctx context.Context, ideaID uint64) ([]domain.Decision, error) {
	var decisions []domain.Decision
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at ASC").
		Find(&decisions).Error
	return decisions, err
}
