package collab

import (
	"context"
	defError "errors"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"

	"gorm.io/gorm"
)

// ErrAlreadyResponded is the repository's signal that a compare-and-swap
// on a pending row found it already decided.
var ErrAlreadyResponded = defError.New("already responded")

type IdeaProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.Idea, error)
}

// CacheInvalidator expires the author's cached dashboards when an accepted
// proposal or a rollback rewrites their idea.
type CacheInvalidator interface {
	InvalidateOwner(ctx context.Context, ownerID uint64)
}

// BrokerPolicy holds the deployment's collaboration gating choices.
type BrokerPolicy struct {
	// RerequestAfterRejection permits a new request after a rejected one.
	// The observed system blocks any re-request; this keeps it a choice.
	RerequestAfterRejection bool
}

type Service interface {
	// Request broker
	SendRequest(ctx context.Context, requesterID, ideaID uint64, message string) (*domain.CollaborationRequest, error)
	RespondToRequest(ctx context.Context, ownerID, requestID uint64, approve bool) (*domain.CollaborationRequest, error)
	CancelRequest(ctx context.Context, requesterID, requestID uint64) error
	ListRequestsForIdea(ctx context.Context, ownerID, ideaID uint64) ([]domain.CollaborationRequest, error)
	ListMyRequests(ctx context.Context, requesterID uint64) ([]domain.CollaborationRequest, error)

	// Proposals & versions
	CreateProposal(ctx context.Context, collaboratorID, ideaID uint64, patch domain.FieldPatch, notes, summary string) (*domain.CollaborationProposal, error)
	RespondToProposal(ctx context.Context, authorID, proposalID uint64, accept bool, reviewNotes string, edited *domain.FieldPatch) (*domain.CollaborationProposal, error)
	ListProposalsForIdea(ctx context.Context, ownerID, ideaID uint64) ([]domain.CollaborationProposal, error)
	ListMyProposals(ctx context.Context, collaboratorID uint64) ([]domain.CollaborationProposal, error)
	Rollback(ctx context.Context, ownerID, ideaID, versionNumber uint64) (*domain.Idea, error)
	ListVersions(ctx context.Context, ideaID uint64) ([]domain.IdeaVersion, error)
	GetVersion(ctx context.Context, ideaID, versionNumber uint64) (*domain.IdeaVersion, error)
}

type DefaultService struct {
	repository  Repository
	ideas       IdeaProvider
	policy      BrokerPolicy
	invalidator CacheInvalidator
}

func NewService(repository Repository, ideas IdeaProvider, policy BrokerPolicy, invalidator CacheInvalidator) Service {
	return &DefaultService{
		repository:  repository,
		ideas:       ideas,
		policy:      policy,
		invalidator: invalidator,
	}
}

func (s *DefaultService) loadIdea(ctx context.Context, ideaID uint64) (*domain.Idea, error) {
	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Idea not found", err)
		}
		return nil, err
	}
	return idea, nil
}

// collaboratorEligible is the status window during which outside parties
// may request or propose.
func collaboratorEligible(s domain.Status) bool {
	return s == domain.StatusDraft || s == domain.StatusStage1Review || s == domain.StatusStage1Revise
}

func (s *DefaultService) SendRequest(ctx context.Context, requesterID, ideaID uint64, message string) (*domain.CollaborationRequest, error) {
	idea, err := s.loadIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	if idea.OwnerID == requesterID {
		return nil, errors.Forbidden("You already own this idea", nil)
	}
	if !idea.CollaborationEnabled {
		return nil, errors.Forbidden("Collaboration is not enabled on this idea", nil)
	}
	if !collaboratorEligible(idea.Status) {
		return nil, errors.Forbidden("This idea is not open for collaboration in its current status", nil)
	}

	existing, err := s.repository.FindRequestsForPair(ctx, ideaID, requesterID)
	if err != nil {
		return nil, err
	}
	for _, req := range existing {
		if req.Status == domain.RequestRejected && s.policy.RerequestAfterRejection {
			continue
		}
		return nil, errors.Conflict("You already have a collaboration request on this idea", nil)
	}

	request := &domain.CollaborationRequest{
		IdeaID:      ideaID,
		RequesterID: requesterID,
		OwnerID:     idea.OwnerID,
		Message:     message,
	}
	if err := s.repository.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// RespondToRequest approves or rejects a pending request. Approval only
// unlocks proposal submission; it adds no membership anywhere.
func (s *DefaultService) RespondToRequest(ctx context.Context, ownerID, requestID uint64, approve bool) (*domain.CollaborationRequest, error) {
	request, err := s.repository.FindRequest(ctx, requestID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Collaboration request not found", err)
		}
		return nil, err
	}

	if request.OwnerID != ownerID {
		return nil, errors.Unauthorized("Only the idea owner can respond to this request", nil)
	}
	if request.Status != domain.RequestPending {
		return nil, errors.Conflict("This request has already been responded to", nil)
	}

	status := domain.RequestRejected
	if approve {
		status = domain.RequestApproved
	}

	affected, err := s.repository.RespondRequest(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, errors.Conflict("This request has already been responded to", nil)
	}

	return s.repository.FindRequest(ctx, requestID)
}

func (s *DefaultService) CancelRequest(ctx context.Context, requesterID, requestID uint64) error {
	affected, err := s.repository.DeletePendingRequest(ctx, requestID, requesterID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NotFound("No pending request of yours to cancel", nil)
	}
	return nil
}

func (s *DefaultService) ListRequestsForIdea(ctx context.Context, ownerID, ideaID uint64) ([]domain.CollaborationRequest, error) {
	idea, err := s.loadIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.OwnerID != ownerID {
		return nil, errors.Unauthorized("Only the idea owner can list its requests", nil)
	}
	return s.repository.ListRequestsForIdea(ctx, ideaID)
}

func (s *DefaultService) ListMyRequests(ctx context.Context, requesterID uint64) ([]domain.CollaborationRequest, error) {
	return s.repository.ListRequestsByRequester(ctx, requesterID)
}

func (s *DefaultService) CreateProposal(ctx context.Context, collaboratorID, ideaID uint64, patch domain.FieldPatch, notes, summary string) (*domain.CollaborationProposal, error) {
	if notes == "" || summary == "" {
		return nil, errors.UnprocessableEntity("Collaboration notes and change summary are required", nil)
	}

	idea, err := s.loadIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	if !idea.CollaborationEnabled {
		return nil, errors.Forbidden("Collaboration is not enabled on this idea", nil)
	}
	if !collaboratorEligible(idea.Status) {
		return nil, errors.Forbidden("This idea is not open for collaboration in its current status", nil)
	}

	approved, err := s.repository.HasApprovedRequest(ctx, ideaID, collaboratorID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, errors.Unauthorized("You are not an approved collaborator on this idea", nil)
	}

	changed := patch.ChangedFields(idea)
	if len(changed) == 0 {
		return nil, errors.UnprocessableEntity("The proposal changes nothing", nil)
	}

	proposal := &domain.CollaborationProposal{
		IdeaID:             ideaID,
		CollaboratorID:     collaboratorID,
		OriginalAuthorID:   idea.OwnerID,
		Proposed:           patch,
		ChangedFields:      changed,
		CollaborationNotes: notes,
		ChangeSummary:      summary,
	}
	if err := s.repository.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// RespondToProposal accepts or rejects a pending proposal. On accept the
// repository runs snapshot + apply + revision bump + status flip as one
// transaction; the author may hand in edited values which overlay the
// proposed patch field by field.
func (s *DefaultService) RespondToProposal(ctx context.Context, authorID, proposalID uint64, accept bool, reviewNotes string, edited *domain.FieldPatch) (*domain.CollaborationProposal, error) {
	proposal, err := s.repository.FindProposal(ctx, proposalID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Proposal not found", err)
		}
		return nil, err
	}

	if proposal.OriginalAuthorID != authorID {
		return nil, errors.Unauthorized("Only the original author can respond to this proposal", nil)
	}
	if proposal.Status != domain.ProposalPending {
		return nil, errors.Conflict("This proposal has already been decided", nil)
	}

	if accept {
		patch := proposal.Proposed
		if edited != nil {
			patch = patch.Merge(*edited)
		}
		if err := s.repository.AcceptProposal(ctx, proposalID, patch, authorID, reviewNotes); err != nil {
			if defError.Is(err, ErrAlreadyResponded) {
				return nil, errors.Conflict("This proposal has already been decided", err)
			}
			return nil, err
		}
		s.invalidator.InvalidateOwner(ctx, proposal.OriginalAuthorID)
	} else {
		affected, err := s.repository.RejectProposal(ctx, proposalID, authorID, reviewNotes)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, errors.Conflict("This proposal has already been decided", nil)
		}
	}

	return s.repository.FindProposal(ctx, proposalID)
}

func (s *DefaultService) ListProposalsForIdea(ctx context.Context, ownerID, ideaID uint64) ([]domain.CollaborationProposal, error) {
	idea, err := s.loadIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.OwnerID != ownerID {
		return nil, errors.Unauthorized("Only the idea owner can list its proposals", nil)
	}
	return s.repository.ListProposalsForIdea(ctx, ideaID)
}

func (s *DefaultService) ListMyProposals(ctx context.Context, collaboratorID uint64) ([]domain.CollaborationProposal, error) {
	return s.repository.ListProposalsByCollaborator(ctx, collaboratorID)
}

func (s *DefaultService) Rollback(ctx context.Context, ownerID, ideaID, versionNumber uint64) (*domain.Idea, error) {
	idea, err := s.loadIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.OwnerID != ownerID {
		return nil, errors.Unauthorized("Only the idea owner can roll back", nil)
	}

	if _, err := s.repository.FindVersion(ctx, ideaID, versionNumber); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("No such version to roll back to", err)
		}
		return nil, err
	}

	restored, err := s.repository.Rollback(ctx, ideaID, versionNumber, ownerID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("No such version to roll back to", err)
		}
		return nil, err
	}
	s.invalidator.InvalidateOwner(ctx, ownerID)
	return restored, nil
}

func (s *DefaultService) ListVersions(ctx context.Context, ideaID uint64) ([]domain.IdeaVersion, error) {
	if _, err := s.loadIdea(ctx, ideaID); err != nil {
		return nil, err
	}
	return s.repository.ListVersions(ctx, ideaID)
}

func (s *DefaultService) GetVersion(ctx context.Context, ideaID, versionNumber uint64) (*domain.IdeaVersion, error) {
	v, err := s.repository.FindVersion(ctx, ideaID, versionNumber)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Version not found", err)
		}
		return nil, err
	}
	return v, nil
}
