package decision

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

type MakeDecisionRequest struct {
	Stage            string `json:"stage" binding:"required,oneof=stage1 stage2"`
	Decision         string `json:"decision" binding:"required,oneof=approve revise reject"`
	CompiledComments string `json:"compiled_comments" binding:"required"`
	DDComments       string `json:"dd_comments"`
}

func (h *Handler) MakeDecision(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req MakeDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	decision, err := h.service.MakeDecision(
		c.Request.Context(),
		utils.CurrentUserID(c),
		ideaID,
		domain.Stage(req.Stage),
		domain.Recommendation(req.Decision),
		req.CompiledComments,
		req.DDComments,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"decision": decision, "message": "Decision recorded"})
}

func (h *Handler) ShowEligibility(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	stage := domain.Stage(c.DefaultQuery("stage", string(domain.Stage1)))

	result, err := h.service.Eligibility(c.Request.Context(), ideaID, stage)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListForIdea(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	decisions, err := h.service.ListForIdea(c.Request.Context(), ideaID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": decisions})
}
