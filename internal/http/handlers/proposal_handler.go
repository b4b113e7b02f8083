package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/http/handlers/common"
	"github.com/ignatzorin/talent-backend/internal/service"
)

type ProposalHandler struct {
	proposals *service.ProposalService
}

func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// Create POST /proposals/job/:jobId
func (h *ProposalHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	jobID, err := common.ParseUUIDParam(c, "jobId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Amount        float64  `json:"amount" binding:"required"`
		CoverLetter   string   `json:"cover_letter" binding:"required"`
		AttachmentIDs []string `json:"attachment_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "amount и cover_letter обязательны")
		return
	}

	in := service.ProposalInput{
		Amount:      req.Amount,
		CoverLetter: req.CoverLetter,
	}
	for _, raw := range req.AttachmentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "некорректный идентификатор вложения")
			return
		}
		in.AttachmentIDs = append(in.AttachmentIDs, id)
	}

	proposal, err := h.proposals.Create(c.Request.Context(), userID, jobID, in)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// ListByJob GET /proposals/job/:jobId
func (h *ProposalHandler) ListByJob(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	jobID, err := common.ParseUUIDParam(c, "jobId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposals, err := h.proposals.ListByJob(c.Request.Context(), userID, jobID)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// ListByBuyer GET /proposals/buyer/:id — отклики на все объявления покупателя.
func (h *ProposalHandler) ListByBuyer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	buyerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	// Чужая сводка откликов закрыта
	if buyerID != userID {
		common.RespondError(c, http.StatusForbidden, "недостаточно прав")
		return
	}

	limit, offset := common.GetPagination(c)
	proposals, err := h.proposals.ListForBuyer(c.Request.Context(), buyerID, limit, offset)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// ListMine GET /proposals/my — отклики исполнителя.
func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	proposals, err := h.proposals.ListForSeller(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// SetDecision PATCH /proposals/:id/decision
func (h *ProposalHandler) SetDecision(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	// Null снимает пометку, поэтому указатель
	var req struct {
		Decision *string `json:"decision"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "тело запроса некорректно")
		return
	}

	proposal, err := h.proposals.SetBuyerDecision(c.Request.Context(), userID, id, req.Decision)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}
