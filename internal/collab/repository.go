package collab

import (
	"context"
	"fmt"
	"idea-review-platform/internal/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Requests
	CreateRequest(ctx context.Context, request *domain.CollaborationRequest) error
	FindRequest(ctx context.Context, id uint64) (*domain.CollaborationRequest, error)
	FindRequestsForPair(ctx context.Context, ideaID, requesterID uint64) ([]domain.CollaborationRequest, error)
	RespondRequest(ctx context.Context, id uint64, status domain.RequestStatus) (int64, error)
	DeletePendingRequest(ctx context.Context, id, requesterID uint64) (int64, error)
	HasApprovedRequest(ctx context.Context, ideaID, userID uint64) (bool, error)
	ListRequestsForIdea(ctx context.Context, ideaID uint64) ([]domain.CollaborationRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID uint64) ([]domain.CollaborationRequest, error)

	// Proposals
	CreateProposal(ctx context.Context, proposal *domain.CollaborationProposal) error
	FindProposal(ctx context.Context, id uint64) (*domain.CollaborationProposal, error)
	AcceptProposal(ctx context.Context, proposalID uint64, patch domain.FieldPatch, reviewerID uint64, reviewNotes string) error
	RejectProposal(ctx context.Context, proposalID, reviewerID uint64, reviewNotes string) (int64, error)
	ListProposalsForIdea(ctx context.Context, ideaID uint64) ([]domain.CollaborationProposal, error)
	ListProposalsByCollaborator(ctx context.Context, collaboratorID uint64) ([]domain.CollaborationProposal, error)

	// Versions
	ListVersions(ctx context.Context, ideaID uint64) ([]domain.IdeaVersion, error)
	FindVersion(ctx context.Context, ideaID, versionNumber uint64) (*domain.IdeaVersion, error)
	Rollback(ctx context.Context, ideaID, versionNumber, actorID uint64) (*domain.Idea, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateRequest(ctx context.Context, request *domain.CollaborationRequest) error {
	request.Status = domain.RequestPending
	request.CreatedAt = time.Now().UTC()
	request.UpdatedAt = request.CreatedAt
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *RepositoryImpl) FindRequest(ctx context.Context, id uint64) (*domain.CollaborationRequest, error) {
	var req domain.CollaborationRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RepositoryImpl) FindRequestsForPair(ctx context.Context, ideaID, requesterID uint64) ([]domain.CollaborationRequest, error) {
	var reqs []domain.CollaborationRequest
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND requester_id = ?", ideaID, requesterID).
		Find(&reqs).Error
	return reqs, err
}

// RespondRequest flips pending to approved/rejected. The status predicate
// in the WHERE clause is the compare-and-swap: a request already responded
// to reports zero rows.
func (r *RepositoryImpl) RespondRequest(ctx context.Context, id uint64, status domain.RequestStatus) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.CollaborationRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": now,
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}

// DeletePendingRequest is a hard delete, the one deliberate exception to
// the append-only posture.
func (r *RepositoryImpl) DeletePendingRequest(ctx context.Context, id, requesterID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND requester_id = ? AND status = ?", id, requesterID, domain.RequestPending).
		Delete(&domain.CollaborationRequest{})
	return res.RowsAffected, res.Error
}

func (r *RepositoryImpl) HasApprovedRequest(ctx context.Context, ideaID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CollaborationRequest{}).
		Where("idea_id = ? AND requester_id = ? AND status = ?", ideaID, userID, domain.RequestApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *RepositoryImpl) ListRequestsForIdea(ctx context.Context, ideaID uint64) ([]domain.CollaborationRequest, error) {
	var reqs []domain.CollaborationRequest
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *RepositoryImpl) ListRequestsByRequester(ctx context.Context, requesterID uint64) ([]domain.CollaborationRequest, error) {
	var reqs []domain.CollaborationRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *RepositoryImpl) CreateProposal(ctx context.Context, proposal *domain.CollaborationProposal) error {
	proposal.Status = domain.ProposalPending
	proposal.CreatedAt = time.Now().UTC()
	proposal.UpdatedAt = proposal.CreatedAt
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *RepositoryImpl) FindProposal(ctx context.Context, id uint64) (*domain.CollaborationProposal, error) {
	var p domain.CollaborationProposal
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// nextVersionNumber must run with the idea row already locked; the unique
// (idea, version) index backstops any caller that forgets.
func nextVersionNumber(tx *gorm.DB, ideaID uint64) (uint64, error) {
	var current uint64
	err := tx.Model(&domain.IdeaVersion{}).
		Where("idea_id = ?", ideaID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&current).Error
	return current + 1, err
}

func snapshotTx(tx *gorm.DB, idea *domain.Idea, description string, actorID uint64, proposalID *uint64) error {
	number, err := nextVersionNumber(tx, idea.ID)
	if err != nil {
		return err
	}

	version := domain.Snapshot(idea)
	version.VersionNumber = number
	version.ChangeDescription = description
	version.ChangedBy = actorID
	version.CollaborationProposalID = proposalID
	version.CreatedAt = time.Now().UTC()

	return tx.Create(&version).Error
}

// AcceptProposal runs the whole accept as one transaction: lock the idea,
// CAS the proposal out of pending, snapshot the pre-change state, apply
// the patch, bump the revision counter. Any failure rolls the lot back.
func (r *RepositoryImpl) AcceptProposal(ctx context.Context, proposalID uint64, patch domain.FieldPatch, reviewerID uint64, reviewNotes string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var proposal domain.CollaborationProposal
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&proposal, proposalID).Error; err != nil {
			return err
		}

		var idea domain.Idea
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&idea, proposal.IdeaID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&domain.CollaborationProposal{}).
			Where("id = ? AND status = ?", proposalID, domain.ProposalPending).
			Updates(map[string]interface{}{
				"status":       domain.ProposalAccepted,
				"review_notes": reviewNotes,
				"reviewed_by":  reviewerID,
				"reviewed_at":  now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyResponded
		}

		description := fmt.Sprintf("Collaboration proposal #%d accepted", proposalID)
		if err := snapshotTx(tx, &idea, description, reviewerID, &proposalID); err != nil {
			return err
		}

		patch.Apply(&idea)
		idea.CurrentRevisionNumber++
		idea.UpdatedAt = now
		return tx.Save(&idea).Error
	})
}

// RejectProposal touches only the proposal row; the idea is untouched.
func (r *RepositoryImpl) RejectProposal(ctx context.Context, proposalID, reviewerID uint64, reviewNotes string) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.CollaborationProposal{}).
		Where("id = ? AND status = ?", proposalID, domain.ProposalPending).
		Updates(map[string]interface{}{
			"status":       domain.ProposalRejected,
			"review_notes": reviewNotes,
			"reviewed_by":  reviewerID,
			"reviewed_at":  now,
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}

func (r *RepositoryImpl) ListProposalsForIdea(ctx context.Context, ideaID uint64) ([]domain.CollaborationProposal, error) {
	var proposals []domain.CollaborationProposal
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}

func (r *RepositoryImpl) ListProposalsByCollaborator(ctx context.Context, collaboratorID uint64) ([]domain.CollaborationProposal, error) {
	var proposals []domain.CollaborationProposal
	err := r.db.WithContext(ctx).
		Where("collaborator_id = ?", collaboratorID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}

func (r *RepositoryImpl) ListVersions(ctx context.Context, ideaID uint64) ([]domain.IdeaVersion, error) {
	var versions []domain.IdeaVersion
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}

func (r *RepositoryImpl) FindVersion(ctx context.Context, ideaID, versionNumber uint64) (*domain.IdeaVersion, error) {
	var v domain.IdeaVersion
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND version_number = ?", ideaID, versionNumber).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Rollback snapshots the current state first, then copies the target
// version's fields back, all under the idea's row lock.
func (r *RepositoryImpl) Rollback(ctx context.Context, ideaID, versionNumber, actorID uint64) (*domain.Idea, error) {
	var idea domain.Idea
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&idea, ideaID).Error; err != nil {
			return err
		}

		var target domain.IdeaVersion
		if err := tx.Where("idea_id = ? AND version_number = ?", ideaID, versionNumber).
			First(&target).Error; err != nil {
			return err
		}

		description := fmt.Sprintf("Rolled back to version %d", versionNumber)
		if err := snapshotTx(tx, &idea, description, actorID, nil); err != nil {
			return err
		}

		target.Restore(&idea)
		idea.CurrentRevisionNumber++
		idea.UpdatedAt = time.Now().UTC()
		return tx.Save(&idea).Error
	})
	if err != nil {
		return nil, err
	}
	return &idea, nil
}
