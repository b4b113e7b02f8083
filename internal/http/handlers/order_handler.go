package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/http/handlers/common"
	"github.com/ignatzorin/talent-backend/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create POST /orders — покупатель акцептует отклик.
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		ProposalID string `json:"proposal_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "proposal_id обязателен")
		return
	}

	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		common.RespondBadRequest(c, "неверный proposal_id")
		return
	}

	order, err := h.orders.CreateFromProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListForBuyer GET /orders/buyer
func (h *OrderHandler) ListForBuyer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListForBuyer(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListForSeller GET /orders/seller
func (h *OrderHandler) ListForSeller(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListForSeller(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get GET /orders/buyer/:id — заказ с окном подтверждения и доступными
// действиями.
func (h *OrderHandler) Get(c *gin.Context) {
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

	order, err := h.orders.GetForUser(c.Request.Context(), userID, id)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Deliver PATCH /orders/:id/deliver — исполнитель сдаёт работу.
func (h *OrderHandler) Deliver(c *gin.Context) {
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

	order, err := h.orders.Deliver(c.Request.Context(), userID, id)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Complete PATCH /orders/:id/complete — решение покупателя по сдаче.
func (h *OrderHandler) Complete(c *gin.Context) {
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

	var req struct {
		Status          string `json:"status" binding:"required"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "status обязателен")
		return
	}

	order, err := h.orders.Complete(c.Request.Context(), userID, id, service.CompleteInput{
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Cancel PATCH /orders/:id/cancel — терминальная отмена с возвратом эскроу.
func (h *OrderHandler) Cancel(c *gin.Context) {
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

	var req struct {
		CancellationReason string `json:"cancellation_reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "cancellation_reason обязателен")
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), userID, id, req.CancellationReason)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
