package idea

import (
	"context"
	defError "errors"
	"fmt"
	"idea-review-platform/internal/attachment"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"idea-review-platform/internal/worker"
	"idea-review-platform/redis"
	"io"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	CreateDraft(ctx context.Context, ownerID uint64, idea *domain.Idea) error
	UpdateContent(ctx context.Context, ideaID, ownerID uint64, patch domain.FieldPatch) (*domain.Idea, error)
	Submit(ctx context.Context, ideaID, ownerID uint64) (*domain.Idea, error)
	Withdraw(ctx context.Context, ideaID, ownerID uint64) (*domain.Idea, error)
	SetTeamMembers(ctx context.Context, ideaID, ownerID uint64, members []domain.TeamMember) (*domain.Idea, error)
	SetCollaboration(ctx context.Context, ideaID, ownerID uint64, enabled bool, deadline *time.Time) (*domain.Idea, error)
	Like(ctx context.Context, ideaID uint64) error
	UploadAttachment(ctx context.Context, ideaID, ownerID uint64, reader io.Reader, size int64, name, mime string) (*domain.Idea, error)
	RemoveAttachment(ctx context.Context, ideaID, ownerID uint64) error
	OpenAttachment(ctx context.Context, ideaID uint64) (io.ReadCloser, string, string, error)
	GetIdea(ctx context.Context, ideaID, userID uint64) (*ShowResponse, error)
	ListMine(ctx context.Context, ownerID uint64, page, pageSize int) (*PaginatedIdeas, error)
}

type DefaultService struct {
	repository  Repository
	attachments attachment.Store
	cache       *redis.Cache
	pool        *worker.Pool
}

func NewService(repository Repository, attachments attachment.Store, cache *redis.Cache, pool *worker.Pool) Service {
	return &DefaultService{
		repository:  repository,
		attachments: attachments,
		cache:       cache,
		pool:        pool,
	}
}

// loadOwned fetches an idea and verifies ownership.
func (s *DefaultService) loadOwned(ctx context.Context, ideaID, ownerID uint64) (*domain.Idea, error) {
	idea, err := s.repository.FindByID(ctx, ideaID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Idea not found", err)
		}
		return nil, err
	}
	if idea.OwnerID != ownerID {
		return nil, errors.Unauthorized("You don't own this idea", nil)
	}
	return idea, nil
}

func (s *DefaultService) CreateDraft(ctx context.Context, ownerID uint64, idea *domain.Idea) error {
	if !idea.Track.Valid() {
		return errors.UnprocessableEntity("Unknown track", nil)
	}
	err := s.repository.Create(ctx, ownerID, idea)
	if err == nil {
		s.bumpOwnerCache(ctx, ownerID)
	}
	return err
}

func (s *DefaultService) UpdateContent(ctx context.Context, ideaID, ownerID uint64, patch domain.FieldPatch) (*domain.Idea, error) {
	idea, err := s.loadOwned(ctx, ideaID, ownerID)
	if err != nil {
		return nil, err
	}
	if !idea.Status.AuthorEditable() {
		return nil, errors.Forbidden("This submission cannot be edited in its current status", nil)
	}

	patch.Apply(idea)
	if err := s.repository.Save(ctx, idea); err != nil {
		return nil, err
	}
	s.bumpOwnerCache(ctx, ownerID)
	return idea, nil
}

// Submit moves a draft into stage 1 review, or a revise-status idea back
// into its stage's review. Status here is the author's own transition; all
// other status changes belong to the decision compiler.
func (s *DefaultService) Submit(ctx context.Context, ideaID, ownerID uint64) (*domain.Idea, error) {
	idea, err := s.loadOwned(ctx, ideaID, ownerID)
	if err != nil {
		return nil, err
	}

	target, ok := domain.ResubmitTarget(idea.Status)
	if !ok {
		return nil, errors.Forbidden("This submission cannot be submitted in its current status", nil)
	}

	now := time.Now().UTC()
	if idea.SubmittedAt == nil {
		idea.SubmittedAt = &now
	}
	idea.Status = target
	if err := s.repository.Save(ctx, idea); err != nil {
		return nil, err
	}
	s.bumpOwnerCache(ctx, ownerID)
	return idea, nil
}

func (s *DefaultService) Withdraw(ctx context.Context, ideaID, ownerID uint64) (*domain.Idea, error) {
	idea, err := s.loadOwned(ctx, ideaID, ownerID)
	if err != nil {
		return nil, err
	}
	if !idea.Status.AuthorEditable() {
		return nil, errors.Forbidden("This submission cannot be withdrawn in its current status", nil)
	}

	idea.Status = domain.StatusWithdrawn
	if err := s.repository.Save(ctx, idea); err != nil {
		return nil, err
	}
	s.bumpOwnerCache(ctx, ownerID)
	return idea, nil
}

func (s *DefaultService) SetTeamMembers(ctx context.Context, ideaID, ownerID uint64, members []domain.TeamMember) (*domain.Idea, error) {
	idea, err := s.loadOwned(ctx, ideaID, ownerID)
	if err != nil {
		return nil, err
	}
	if idea.Status.Terminal() {
		return nil, errors.Forbidden("This submission can no longer change", nil)
	}

	idea.TeamMembers = members
	if err := s.repository.Save(ctx, idea); err != nil {
		return nil, err
	}
	s.bumpOwnerCache(ctx, ownerID)
	return idea, nil
}

func (s *DefaultService) SetCollaboration(ctx context.Context, ideaID, ownerID uint64, enabled bool, deadline *time.Time) (*domain.Idea, error) {
	idea, err := s.loadOwned(ctx, ideaID, ownerID)
	if err != nil {
		return nil, err
	}
	if idea.Status.Terminal() {
		return nil, errors.Forbidden("This submission can no longer change", nil)
	}

	idea.CollaborationEnabled = enabled
	idea.CollaborationDeadline = deadline
	if err := s.repository.Save(ctx, idea); err != nil {
		return nil, err
	}
	s.bumpOwnerCache(ctx, ownerID)
	return idea, nil
}

func (s *DefaultService) Like(ctx context.Context, ideaID uint64) error {
	err := s.repository.IncrementLike(ctx, ideaID)
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("Idea not found", err)
	}
	return err
}

func (s *DefaultService) UploadAttachment(ctx context.Context, ideaID, ownerID uint64, reader io.Reader, size int64, name, mime string) (*domain.Idea, error) {
	idea, err := s.loadOwned(ctx, ideaID, ownerID)
	if err != nil {
		return nil, err
	}
	if !idea.Status.AuthorEditable() {
		return nil, errors.Forbidden("This submission cannot be edited in its current status", nil)
	}

	path, err := s.attachments.Put(ctx, reader, size, name, mime)
	if err != nil {
		return nil, errors.Internal(err)
	}

	// best effort cleanup of the replaced blob
	if idea.AttachmentPath != nil {
		s.attachments.Delete(ctx, *idea.AttachmentPath)
	}

	idea.AttachmentPath = &path
	idea.AttachmentName = &name
	idea.AttachmentMime = &mime
	if err := s.repository.Save(ctx, idea); err != nil {
		return nil, err
	}
	s.bumpOwnerCache(ctx, ownerID)
	return idea, nil
}

func (s *DefaultService) RemoveAttachment(ctx context.Context, ideaID, ownerID uint64) error {
	idea, err := s.loadOwned(ctx, ideaID, ownerID)
	if err != nil {
		return err
	}
	if idea.AttachmentPath == nil {
		return errors.NotFound("No attachment on this idea", nil)
	}

	if err := s.attachments.Delete(ctx, *idea.AttachmentPath); err != nil {
		return errors.Internal(err)
	}
	idea.AttachmentPath = nil
	idea.AttachmentName = nil
	idea.AttachmentMime = nil
	if err := s.repository.Save(ctx, idea); err != nil {
		return err
	}
	s.bumpOwnerCache(ctx, ownerID)
	return nil
}

// OpenAttachment returns the stream plus the display name and mime type.
func (s *DefaultService) OpenAttachment(ctx context.Context, ideaID uint64) (io.ReadCloser, string, string, error) {
	idea, err := s.repository.FindByID(ctx, ideaID)
	if err != nil {
		return nil, "", "", errors.NotFound("Idea not found", err)
	}
	if idea.AttachmentPath == nil {
		return nil, "", "", errors.NotFound("No attachment on this idea", nil)
	}

	rc, err := s.attachments.Open(ctx, *idea.AttachmentPath)
	if err != nil {
		return nil, "", "", errors.Internal(err)
	}
	return rc, *idea.AttachmentName, *idea.AttachmentMime, nil
}

type ShowResponse struct {
	Idea          *domain.Idea `json:"idea"`
	IsOwner       bool         `json:"is_owner"`
	UserCanSubmit bool         `json:"user_can_submit"`
}

func (s *DefaultService) GetIdea(ctx context.Context, ideaID, userID uint64) (*ShowResponse, error) {
	idea, err := s.repository.FindByID(ctx, ideaID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Idea not found", err)
		}
		return nil, err
	}

	isOwner := idea.OwnerID == userID
	_, canSubmit := domain.ResubmitTarget(idea.Status)

	return &ShowResponse{
		Idea:          idea,
		IsOwner:       isOwner,
		UserCanSubmit: isOwner && canSubmit,
	}, nil
}

type PaginatedIdeas struct {
	Data []domain.Idea `json:"data"`
	Meta Meta          `json:"meta"`
}

func (s *DefaultService) ListMine(ctx context.Context, ownerID uint64, page, pageSize int) (*PaginatedIdeas, error) {
	v := s.cache.GetVersion(ctx, ownerVersionKey(ownerID))

	cacheKey := fmt.Sprintf("ideas:u:%d:v:%d:p:%d:ps:%d", ownerID, v, page, pageSize)

	var result PaginatedIdeas
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	ideas, meta, err := s.repository.ListByOwner(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedIdeas{Data: ideas, Meta: meta}
	s.pool.Submit(func(ctx context.Context) error {
		return s.cache.Set(ctx, cacheKey, result, 24*time.Hour)
	})

	return &result, nil
}

func (s *DefaultService) bumpOwnerCache(ctx context.Context, ownerID uint64) {
	s.cache.IncrementVersion(ctx, ownerVersionKey(ownerID))
}
