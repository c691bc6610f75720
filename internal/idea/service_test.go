package idea

import (
	"context"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"idea-review-platform/internal/worker"
	"idea-review-platform/redis"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, ownerID uint64, idea *domain.Idea) error {
	args := m.Called(ctx, ownerID, idea)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Idea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Idea), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, idea *domain.Idea) error {
	args := m.Called(ctx, idea)
	return args.Error(0)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]domain.Idea, Meta, error) {
	args := m.Called(ctx, ownerID, page, pageSize)
	return args.Get(0).([]domain.Idea), args.Get(1).(Meta), args.Error(2)
}

func (m *MockRepository) IncrementLike(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, reader io.Reader, size int64, originalName, mime string) (string, error) {
	args := m.Called(ctx, reader, size, originalName, mime)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockStore) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func newTestService(t *testing.T) (Service, *MockRepository, *MockStore) {
	t.Helper()
	repo := new(MockRepository)
	store := new(MockStore)
	pool := worker.NewPool(1)
	t.Cleanup(pool.Shutdown)
	return NewService(repo, store, &redis.Cache{}, pool), repo, store
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*errors.APIError)
	assert.True(t, ok, "expected *errors.APIError, got %T", err)
	return apiErr.Status
}

// TestCreateDraft_UnknownTrack tests the track enum guard
func TestCreateDraft_UnknownTrack(t *testing.T) {
	service, _, _ := newTestService(t)

	err := service.CreateDraft(context.Background(), 1, &domain.Idea{Track: "patent"})

	assert.Equal(t, 422, apiStatus(t, err))
}

// TestSubmit_DraftEntersStage1 tests first submission
func TestSubmit_DraftEntersStage1(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Track: domain.TrackIdea, Status: domain.StatusDraft,
	}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(i *domain.Idea) bool {
		return i.Status == domain.StatusStage1Review && i.SubmittedAt != nil
	})).Return(nil)

	idea, err := service.Submit(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusStage1Review, idea.Status)
	repo.AssertExpectations(t)
}

// TestSubmit_ReviseReentersSameStage tests resubmission after a revise decision
func TestSubmit_ReviseReentersSameStage(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Track: domain.TrackIdea, Status: domain.StatusStage2Revise,
	}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(i *domain.Idea) bool {
		return i.Status == domain.StatusStage2Review
	})).Return(nil)

	idea, err := service.Submit(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusStage2Review, idea.Status)
}

// TestSubmit_WhileUnderReview tests that an idea in review cannot resubmit
func TestSubmit_WhileUnderReview(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusStage1Review,
	}, nil)

	_, err := service.Submit(context.Background(), 1, 2)

	assert.Equal(t, 403, apiStatus(t, err))
}

// TestSubmit_NotOwner tests ownership gating
func TestSubmit_NotOwner(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusDraft,
	}, nil)

	_, err := service.Submit(context.Background(), 1, 7)

	assert.Equal(t, 401, apiStatus(t, err))
}

// TestUpdateContent_LockedDuringReview tests the editable-status window
func TestUpdateContent_LockedDuringReview(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusStage1Review,
	}, nil)

	title := "new title"
	_, err := service.UpdateContent(context.Background(), 1, 2, domain.FieldPatch{Title: &title})

	assert.Equal(t, 403, apiStatus(t, err))
}

// TestWithdraw_FromDraft tests a clean withdrawal
func TestWithdraw_FromDraft(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusDraft,
	}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(i *domain.Idea) bool {
		return i.Status == domain.StatusWithdrawn
	})).Return(nil)

	idea, err := service.Withdraw(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusWithdrawn, idea.Status)
}

// TestWithdraw_WhileUnderReview tests that review-locked ideas stay put
func TestWithdraw_WhileUnderReview(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusStage2Review,
	}, nil)

	_, err := service.Withdraw(context.Background(), 1, 2)

	assert.Equal(t, 403, apiStatus(t, err))
}

// TestLike_Missing tests liking a deleted idea
func TestLike_Missing(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("IncrementLike", mock.Anything, uint64(99)).Return(gorm.ErrRecordNotFound)

	err := service.Like(context.Background(), 99)

	assert.Equal(t, 404, apiStatus(t, err))
}

// TestGetIdea_OwnerFlags tests the show payload's derived flags
func TestGetIdea_OwnerFlags(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusStage1Revise,
	}, nil)

	resp, err := service.GetIdea(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.True(t, resp.IsOwner)
	assert.True(t, resp.UserCanSubmit)
}

// TestGetIdea_VisitorFlags tests the same payload for a non-owner
func TestGetIdea_VisitorFlags(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusStage1Revise,
	}, nil)

	resp, err := service.GetIdea(context.Background(), 1, 7)

	assert.NoError(t, err)
	assert.False(t, resp.IsOwner)
	assert.False(t, resp.UserCanSubmit)
}

// TestRemoveAttachment_NoneAttached tests removing a missing attachment
func TestRemoveAttachment_NoneAttached(t *testing.T) {
	service, repo, _ := newTestService(t)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusDraft,
	}, nil)

	err := service.RemoveAttachment(context.Background(), 1, 2)

	assert.Equal(t, 404, apiStatus(t, err))
}

// TestMutationsBumpCacheVersion tests that owner-visible writes expire the
// cached dashboard pages
func TestMutationsBumpCacheVersion(t *testing.T) {
	mini := miniredis.RunT(t)
	cache := redis.NewCache(mini.Addr())
	t.Cleanup(cache.Close)

	repo := new(MockRepository)
	store := new(MockStore)
	pool := worker.NewPool(1)
	t.Cleanup(pool.Shutdown)
	service := NewService(repo, store, cache, pool)

	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusDraft,
	}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	ctx := context.Background()
	before := cache.GetVersion(ctx, ownerVersionKey(2))

	_, err := service.SetCollaboration(ctx, 1, 2, true, nil)
	assert.NoError(t, err)
	assert.Equal(t, before+1, cache.GetVersion(ctx, ownerVersionKey(2)))

	_, err = service.SetTeamMembers(ctx, 1, 2, nil)
	assert.NoError(t, err)
	assert.Equal(t, before+2, cache.GetVersion(ctx, ownerVersionKey(2)))
}

// TestCacheInvalidator_BumpsOwnerVersion tests the hook other services use
// when they rewrite an idea out of band
func TestCacheInvalidator_BumpsOwnerVersion(t *testing.T) {
	mini := miniredis.RunT(t)
	cache := redis.NewCache(mini.Addr())
	t.Cleanup(cache.Close)

	ctx := context.Background()
	invalidator := NewCacheInvalidator(cache)
	invalidator.InvalidateOwner(ctx, 7)
	invalidator.InvalidateOwner(ctx, 7)

	assert.Equal(t, int64(2), cache.GetVersion(ctx, ownerVersionKey(7)))
}

// TestUploadAttachment_ReplacesOldBlob tests swap-on-reupload
func TestUploadAttachment_ReplacesOldBlob(t *testing.T) {
	service, repo, store := newTestService(t)

	oldPath := "blobs/old"
	repo.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Idea{
		ID: 1, OwnerID: 2, Status: domain.StatusDraft, AttachmentPath: &oldPath,
	}, nil)
	store.On("Put", mock.Anything, mock.Anything, int64(4), "plan.pdf", "application/pdf").Return("blobs/new", nil)
	store.On("Delete", mock.Anything, "blobs/old").Return(nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(i *domain.Idea) bool {
		return i.AttachmentPath != nil && *i.AttachmentPath == "blobs/new"
	})).Return(nil)

	_, err := service.UploadAttachment(context.Background(), 1, 2, nil, 4, "plan.pdf", "application/pdf")

	assert.NoError(t, err)
	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}
