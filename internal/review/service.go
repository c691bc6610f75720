package review

import (
	"context"
	defError "errors"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"idea-review-platform/internal/identity"

	"gorm.io/gorm"
)

// IdeaProvider is the slice of the idea store this engine reads.
type IdeaProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.Idea, error)
}

// Policy is the per-track review input policy.
type Policy struct {
	MinCommentLen int
}

type Service interface {
	SubmitReview(ctx context.Context, reviewerID, ideaID uint64, stage domain.Stage, recommendation domain.Recommendation, comments string) (*domain.Review, error)
	ListReviewable(ctx context.Context, reviewerID uint64, track domain.Track, stage domain.Stage) ([]domain.Idea, error)
	ListReviewedByUser(ctx context.Context, reviewerID uint64, stage domain.Stage) ([]ReviewedItem, error)
}

type DefaultService struct {
	repository    Repository
	ideas         IdeaProvider
	directory     identity.Directory
	policies      map[domain.Track]Policy
	reviewedLimit int
}

func NewService(repository Repository, ideas IdeaProvider, directory identity.Directory, policies map[domain.Track]Policy, reviewedLimit int) Service {
	return &DefaultService{
		repository:    repository,
		ideas:         ideas,
		directory:     directory,
		policies:      policies,
		reviewedLimit: reviewedLimit,
	}
}

// SubmitReview records one reviewer's recommendation. It never touches the
// idea's status; stage completion is the decision compiler's call alone.
func (s *DefaultService) SubmitReview(ctx context.Context, reviewerID, ideaID uint64, stage domain.Stage, recommendation domain.Recommendation, comments string) (*domain.Review, error) {
	if !stage.Valid() {
		return nil, errors.UnprocessableEntity("Unknown review stage", nil)
	}
	if !recommendation.Valid() {
		return nil, errors.UnprocessableEntity("Unknown recommendation", nil)
	}

	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Submission not found", err)
		}
		return nil, err
	}

	policy := s.policies[idea.Track]
	if len(comments) < policy.MinCommentLen {
		return nil, errors.UnprocessableEntity("Review comments are too short", nil)
	}

	if idea.Status != stage.ReviewStatus() {
		return nil, errors.Forbidden("This submission is not open for review in this stage", nil)
	}
	if idea.OwnerID == reviewerID {
		return nil, errors.Forbidden("You cannot review your own submission", nil)
	}

	hasRole, err := s.directory.HasRole(reviewerID, domain.ReviewerRole(idea.Track, stage))
	if err != nil {
		return nil, err
	}
	if !hasRole {
		return nil, errors.Forbidden("You cannot review this submission", nil)
	}

	already, err := s.repository.HasReviewed(ctx, ideaID, reviewerID, stage)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, errors.Forbidden("You have already reviewed this submission", nil)
	}

	review := &domain.Review{
		IdeaID:         ideaID,
		ReviewerID:     reviewerID,
		Stage:          stage,
		Recommendation: recommendation,
		Comments:       comments,
	}
	if err := s.repository.Create(ctx, review); err != nil {
		// A concurrent duplicate slips past HasReviewed; the unique index
		// catches it here.
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("You have already reviewed this submission", err)
		}
		return nil, err
	}

	return review, nil
}

func (s *DefaultService) ListReviewable(ctx context.Context, reviewerID uint64, track domain.Track, stage domain.Stage) ([]domain.Idea, error) {
	if !track.Valid() {
		return nil, errors.UnprocessableEntity("Unknown track", nil)
	}
	if !stage.Valid() {
		return nil, errors.UnprocessableEntity("Unknown review stage", nil)
	}

	hasRole, err := s.directory.HasRole(reviewerID, domain.ReviewerRole(track, stage))
	if err != nil {
		return nil, err
	}
	if !hasRole {
		return nil, errors.Unauthorized("You don't have a reviewer role for this stage", nil)
	}

	return s.repository.ListReviewable(ctx, reviewerID, track, stage)
}

func (s *DefaultService) ListReviewedByUser(ctx context.Context, reviewerID uint64, stage domain.Stage) ([]ReviewedItem, error) {
	if !stage.Valid() {
		return nil, errors.UnprocessableEntity("Unknown review stage", nil)
	}
	return s.repository.ListReviewedByUser(ctx, reviewerID, stage, s.reviewedLimit)
}
