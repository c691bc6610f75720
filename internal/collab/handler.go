package collab

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

type SendRequestForm struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

func (h *Handler) SendRequest(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var form SendRequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	request, err := h.service.SendRequest(c.Request.Context(), utils.CurrentUserID(c), ideaID, form.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request, "message": "Collaboration request sent"})
}

type RespondRequestForm struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

func (h *Handler) RespondToRequest(c *gin.Context) {
	requestID, ok := utils.ParseIDParam(c, "requestId")
	if !ok {
		return
	}

	var form RespondRequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	request, err := h.service.RespondToRequest(
		c.Request.Context(),
		utils.CurrentUserID(c),
		requestID,
		form.Action == "approve",
	)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Collaboration request rejected"
	if request.Status == domain.RequestApproved {
		message = "Collaboration request approved"
	}
	c.JSON(http.StatusOK, gin.H{"request": request, "message": message})
}

func (h *Handler) CancelRequest(c *gin.Context) {
	requestID, ok := utils.ParseIDParam(c, "requestId")
	if !ok {
		return
	}

	if err := h.service.CancelRequest(c.Request.Context(), utils.CurrentUserID(c), requestID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collaboration request cancelled"})
}

func (h *Handler) ListRequestsForIdea(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	requests, err := h.service.ListRequestsForIdea(c.Request.Context(), utils.CurrentUserID(c), ideaID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": requests})
}

func (h *Handler) ListMyRequests(c *gin.Context) {
	requests, err := h.service.ListMyRequests(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": requests})
}

type CreateProposalForm struct {
	Proposed           domain.FieldPatch `json:"proposed" binding:"required"`
	CollaborationNotes string            `json:"collaboration_notes" binding:"required"`
	ChangeSummary      string            `json:"change_summary" binding:"required"`
}

func (h *Handler) CreateProposal(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var form CreateProposalForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	proposal, err := h.service.CreateProposal(
		c.Request.Context(),
		utils.CurrentUserID(c),
		ideaID,
		form.Proposed,
		form.CollaborationNotes,
		form.ChangeSummary,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"proposal": proposal, "message": "Proposal submitted"})
}

type RespondProposalForm struct {
	Action      string             `json:"action" binding:"required,oneof=accept reject"`
	ReviewNotes string             `json:"review_notes"`
	Edited      *domain.FieldPatch `json:"edited"`
}

func (h *Handler) RespondToProposal(c *gin.Context) {
	proposalID, ok := utils.ParseIDParam(c, "proposalId")
	if !ok {
		return
	}

	var form RespondProposalForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	proposal, err := h.service.RespondToProposal(
		c.Request.Context(),
		utils.CurrentUserID(c),
		proposalID,
		form.Action == "accept",
		form.ReviewNotes,
		form.Edited,
	)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Proposal rejected"
	if proposal.Status == domain.ProposalAccepted {
		message = "Proposal accepted and applied"
	}
	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": message})
}

func (h *Handler) ListProposalsForIdea(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	proposals, err := h.service.ListProposalsForIdea(c.Request.Context(), utils.CurrentUserID(c), ideaID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": proposals})
}

func (h *Handler) ListMyProposals(c *gin.Context) {
	proposals, err := h.service.ListMyProposals(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": proposals})
}

func (h *Handler) Rollback(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}
	versionNumber, ok := utils.ParseIDParam(c, "version")
	if !ok {
		return
	}

	idea, err := h.service.Rollback(c.Request.Context(), utils.CurrentUserID(c), ideaID, versionNumber)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea, "message": "Rolled back"})
}

func (h *Handler) ListVersions(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	versions, err := h.service.ListVersions(c.Request.Context(), ideaID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": versions})
}

func (h *Handler) ShowVersion(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}
	versionNumber, ok := utils.ParseIDParam(c, "version")
	if !ok {
		return
	}

	version, err := h.service.GetVersion(c.Request.Context(), ideaID, versionNumber)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, version)
}
