package review

import (
	"bytes"
	"context"
	"encoding/json"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) SubmitReview(ctx context.Context, reviewerID, ideaID uint64, stage domain.Stage, recommendation domain.Recommendation, comments string) (*domain.Review, error) {
	args := m.Called(ctx, reviewerID, ideaID, stage, recommendation, comments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockService) ListReviewable(ctx context.Context, reviewerID uint64, track domain.Track, stage domain.Stage) ([]domain.Idea, error) {
	args := m.Called(ctx, reviewerID, track, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Idea), args.Error(1)
}

func (m *MockService) ListReviewedByUser(ctx context.Context, reviewerID uint64, stage domain.Stage) ([]ReviewedItem, error) {
	args := m.Called(ctx, reviewerID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReviewedItem), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	return router
}

// TestSubmitReview_HandlerSuccess tests a well-formed review submission
func TestSubmitReview_HandlerSuccess(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	review := &domain.Review{ID: 1, IdeaID: 1, ReviewerID: 2, Stage: domain.Stage1}
	mockService.On("SubmitReview", mock.Anything, uint64(2), uint64(1), domain.Stage1, domain.RecommendApprove, "solid plan with clear scope").
		Return(review, nil)

	router.POST("/ideas/:id/reviews", func(c *gin.Context) {
		c.Set("user_id", uint64(2))
		handler.SubmitReview(c)
	})

	payload := SubmitReviewRequest{Stage: "stage1", Recommendation: "approve", Comments: "solid plan with clear scope"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/ideas/1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

// TestSubmitReview_InvalidRecommendation tests the binding-level enum check
func TestSubmitReview_InvalidRecommendation(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	router.POST("/ideas/:id/reviews", func(c *gin.Context) {
		c.Set("user_id", uint64(2))
		handler.SubmitReview(c)
	})

	payload := map[string]string{"stage": "stage1", "recommendation": "maybe", "comments": "hmm"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/ideas/1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// 422 for validation errors (recommendation outside the enum)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// TestSubmitReview_InvalidID tests a non-numeric idea id
func TestSubmitReview_InvalidID(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	router.POST("/ideas/:id/reviews", func(c *gin.Context) {
		c.Set("user_id", uint64(2))
		handler.SubmitReview(c)
	})

	req := httptest.NewRequest("POST", "/ideas/invalid/reviews", bytes.NewBuffer([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestListReviewable_DefaultsToStage1Ideas tests the queue's default filters
func TestListReviewable_DefaultsToStage1Ideas(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	queue := []domain.Idea{{ID: 3, Status: domain.StatusStage1Review}}
	mockService.On("ListReviewable", mock.Anything, uint64(2), domain.TrackIdea, domain.Stage1).Return(queue, nil)

	router.GET("/reviews/queue", func(c *gin.Context) {
		c.Set("user_id", uint64(2))
		handler.ListReviewable(c)
	})

	req := httptest.NewRequest("GET", "/reviews/queue", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotNil(t, response["data"])
	mockService.AssertExpectations(t)
}

// TestListMyReviews_Stage2Query tests the stage query parameter
func TestListMyReviews_Stage2Query(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("ListReviewedByUser", mock.Anything, uint64(2), domain.Stage2).Return([]ReviewedItem{}, nil)

	router.GET("/reviews/mine", func(c *gin.Context) {
		c.Set("user_id", uint64(2))
		handler.ListMyReviews(c)
	})

	req := httptest.NewRequest("GET", "/reviews/mine?stage=stage2", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
