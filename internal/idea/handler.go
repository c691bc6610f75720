package idea

import (
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"idea-review-platform/internal/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateRequest struct {
	Track            string `json:"track" binding:"required,oneof=idea challenge"`
	Title            string `json:"title" binding:"required,min=1,max=255"`
	Abstract         string `json:"abstract"`
	ProblemStatement string `json:"problem_statement"`
	ProposedSolution string `json:"proposed_solution"`
	CostBenefit      string `json:"cost_benefit"`
	Disclosure       string `json:"disclosure"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID := utils.CurrentUserID(c)

	idea := &domain.Idea{
		Track:            domain.Track(form.Track),
		Title:            form.Title,
		Abstract:         form.Abstract,
		ProblemStatement: form.ProblemStatement,
		ProposedSolution: form.ProposedSolution,
		CostBenefit:      form.CostBenefit,
		Disclosure:       form.Disclosure,
	}

	if err := h.service.CreateDraft(c.Request.Context(), userID, idea); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"idea": idea, "message": "Draft created"})
}

func (h *Handler) Update(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var patch domain.FieldPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	idea, err := h.service.UpdateContent(c.Request.Context(), ideaID, utils.CurrentUserID(c), patch)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea, "message": "Idea updated"})
}

func (h *Handler) Submit(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	idea, err := h.service.Submit(c.Request.Context(), ideaID, utils.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea, "message": "Submitted for review"})
}

func (h *Handler) Withdraw(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	idea, err := h.service.Withdraw(c.Request.Context(), ideaID, utils.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea, "message": "Submission withdrawn"})
}

type TeamMembersRequest struct {
	Members []domain.TeamMember `json:"members" binding:"required,dive"`
}

func (h *Handler) SetTeamMembers(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req TeamMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	idea, err := h.service.SetTeamMembers(c.Request.Context(), ideaID, utils.CurrentUserID(c), req.Members)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea, "message": "Team updated"})
}

type CollaborationSettingsRequest struct {
	Enabled  bool       `json:"enabled"`
	Deadline *time.Time `json:"deadline"`
}

func (h *Handler) SetCollaboration(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req CollaborationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	idea, err := h.service.SetCollaboration(c.Request.Context(), ideaID, utils.CurrentUserID(c), req.Enabled, req.Deadline)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea, "message": "Collaboration settings updated"})
}

func (h *Handler) Like(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Like(c.Request.Context(), ideaID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Liked"})
}

func (h *Handler) UploadAttachment(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(errors.UnprocessableEntity("Attachment file is required", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}
	defer file.Close()

	idea, err := h.service.UploadAttachment(
		c.Request.Context(),
		ideaID,
		utils.CurrentUserID(c),
		file,
		fileHeader.Size,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea, "message": "Attachment uploaded"})
}

func (h *Handler) RemoveAttachment(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveAttachment(c.Request.Context(), ideaID, utils.CurrentUserID(c)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attachment removed"})
}

func (h *Handler) DownloadAttachment(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	rc, name, mime, err := h.service.OpenAttachment(c.Request.Context(), ideaID)
	if err != nil {
		c.Error(err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, -1, mime, rc, nil)
}

func (h *Handler) Show(c *gin.Context) {
	ideaID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetIdea(c.Request.Context(), ideaID, utils.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ShowMine(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	result, err := h.service.ListMine(c.Request.Context(), utils.CurrentUserID(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
