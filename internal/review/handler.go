package review

import (
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"idea-review-platform/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type SubmitReviewRequest struct {
	Stage          string `json:"stage" binding:"required,oneof=stage1 stage2"`
	Recommendation string `json:"recommendation" binding:"required,oneof=approve revise reject"`
	Comments       string `json:"comments" binding:"required"`
}

func (h *Handler) SubmitReview(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	review, err := h.service.SubmitReview(
		c.Request.Context(),
		utils.CurrentUserID(c),
		ideaID,
		domain.Stage(req.Stage),
		domain.Recommendation(req.Recommendation),
		req.Comments,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review, "message": "Review submitted"})
}

func (h *Handler) ListReviewable(c *gin.Context) {
	track := domain.Track(c.DefaultQuery("track", string(domain.TrackIdea)))
	stage := domain.Stage(c.DefaultQuery("stage", string(domain.Stage1)))

	ideas, err := h.service.ListReviewable(c.Request.Context(), utils.CurrentUserID(c), track, stage)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ideas})
}

func (h *Handler) ListMyReviews(c *gin.Context) {
	stage := domain.Stage(c.DefaultQuery("stage", string(domain.Stage1)))

	items, err := h.service.ListReviewedByUser(c.Request.Context(), utils.CurrentUserID(c), stage)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
