package decision

import (
	"context"
	defError "errors"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"idea-review-platform/internal/identity"
	"time"

	"gorm.io/gorm"
)

type IdeaProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.Idea, error)
}

type ReviewCounter interface {
	CountForStage(ctx context.Context, ideaID uint64, stage domain.Stage) (int64, error)
}

// CacheInvalidator expires the owner's cached dashboards after a decision
// moves their idea.
type CacheInvalidator interface {
	InvalidateOwner(ctx context.Context, ownerID uint64)
}

type Service interface {
	MakeDecision(ctx context.Context, deciderID, ideaID uint64, stage domain.Stage, decision domain.Recommendation, compiledComments, ddComments string) (*domain.Decision, error)
	Eligibility(ctx context.Context, ideaID uint64, stage domain.Stage) (*EligibilityResponse, error)
	ListForIdea(ctx context.Context, ideaID uint64) ([]domain.Decision, error)
}

// DefaultService is the only component permitted to move an idea between
// review stages. Everything else appends rows around it.
type DefaultService struct {
	repository  Repository
	ideas       IdeaProvider
	reviews     ReviewCounter
	directory   identity.Directory
	policies    map[domain.Track]Policy
	invalidator CacheInvalidator
	now         func() time.Time
}

func NewService(repository Repository, ideas IdeaProvider, reviews ReviewCounter, directory identity.Directory, policies map[domain.Track]Policy, invalidator CacheInvalidator) *DefaultService {
	return &DefaultService{
		repository:  repository,
		ideas:       ideas,
		reviews:     reviews,
		directory:   directory,
		policies:    policies,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// MakeDecision compiles a stage's reviews into one binding decision and
// advances (or reverts) the idea. One decision per (idea, stage): the
// second writer gets an AlreadyDecided conflict off the unique index.
func (s *DefaultService) MakeDecision(ctx context.Context, deciderID, ideaID uint64, stage domain.Stage, decision domain.Recommendation, compiledComments, ddComments string) (*domain.Decision, error) {
	if !stage.Valid() {
		return nil, errors.UnprocessableEntity("Unknown review stage", nil)
	}
	newStatus, ok := domain.DecisionOutcome(stage, decision)
	if !ok {
		return nil, errors.UnprocessableEntity("Unknown decision value", nil)
	}

	isDD, err := s.directory.HasRole(deciderID, domain.RoleDD)
	if err != nil {
		return nil, err
	}
	if !isDD {
		return nil, errors.Unauthorized("Only the deputy director can compile decisions", nil)
	}

	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Submission not found", err)
		}
		return nil, err
	}

	if idea.Status != stage.ReviewStatus() {
		// A repeated call after this stage's decision committed lands here
		// too; report it as the duplicate it is, not as a state problem.
		if _, ferr := s.repository.FindForStage(ctx, ideaID, stage); ferr == nil {
			return nil, errors.Conflict("This stage has already been decided", nil)
		} else if !defError.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, ferr
		}
		return nil, errors.Forbidden("This submission is not awaiting a decision for this stage", nil)
	}

	eligible, err := s.quorumMet(ctx, idea, stage)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, errors.Forbidden("Not enough reviews have been collected for this stage", nil)
	}

	row := &domain.Decision{
		IdeaID:           ideaID,
		Stage:            stage,
		Decision:         decision,
		CompiledComments: compiledComments,
		DDComments:       ddComments,
		DeciderID:        deciderID,
		PreviousStatus:   idea.Status,
		NewStatus:        newStatus,
	}

	if err := s.repository.CreateAndAdvance(ctx, row); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("This stage has already been decided", err)
		}
		return nil, err
	}
	s.invalidator.InvalidateOwner(ctx, idea.OwnerID)

	return row, nil
}

func (s *DefaultService) quorumMet(ctx context.Context, idea *domain.Idea, stage domain.Stage) (bool, error) {
	reviews, err := s.reviews.CountForStage(ctx, idea.ID, stage)
	if err != nil {
		return false, err
	}

	roleHolders, err := s.directory.CountUsersWithRole(domain.ReviewerRole(idea.Track, stage))
	if err != nil {
		return false, err
	}

	policy := s.policies[idea.Track]
	return policy.Eligible(reviews, roleHolders, idea.UpdatedAt, s.now()), nil
}

type EligibilityResponse struct {
	Decidable      bool  `json:"decidable"`
	ReviewCount    int64 `json:"review_count"`
	RoleHolders    int64 `json:"role_holders"`
	AlreadyDecided bool  `json:"already_decided"`
}

// Eligibility is the DD dashboard helper: how close a stage is to being
// decidable, without mutating anything.
func (s *DefaultService) Eligibility(ctx context.Context, ideaID uint64, stage domain.Stage) (*EligibilityResponse, error) {
	if !stage.Valid() {
		return nil, errors.UnprocessableEntity("Unknown review stage", nil)
	}

	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Submission not found", err)
		}
		return nil, err
	}

	reviews, err := s.reviews.CountForStage(ctx, ideaID, stage)
	if err != nil {
		return nil, err
	}
	roleHolders, err := s.directory.CountUsersWithRole(domain.ReviewerRole(idea.Track, stage))
	if err != nil {
		return nil, err
	}

	decided := false
	if _, err := s.repository.FindForStage(ctx, ideaID, stage); err == nil {
		decided = true
	} else if !defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	policy := s.policies[idea.Track]
	return &EligibilityResponse{
		Decidable:      !decided && idea.Status == stage.ReviewStatus() && policy.Eligible(reviews, roleHolders, idea.UpdatedAt, s.now()),
		ReviewCount:    reviews,
		RoleHolders:    roleHolders,
		AlreadyDecided: decided,
	}, nil
}

func (s *DefaultService) ListForIdea(ctx context.Context, ideaID uint64) ([]domain.Decision, error) {
	return s.repository.ListForIdea(ctx, ideaID)
}
