package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/http/handlers/common"
	"github.com/ignatzorin/talent-backend/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Process POST /payments/process — приём платежа в эскроу.
func (h *PaymentHandler) Process(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		OrderID         string  `json:"order_id" binding:"required"`
		PaymentMethod   string  `json:"payment_method" binding:"required"`
		Amount          float64 `json:"amount" binding:"required"`
		PlatformCharges float64 `json:"platform_charges"`
		Tax             float64 `json:"tax"`
		TotalAmount     float64 `json:"total_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "order_id, payment_method, amount и total_amount обязательны")
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		common.RespondBadRequest(c, "неверный order_id")
		return
	}

	payment, err := h.payments.Process(c.Request.Context(), userID, service.ProcessInput{
		OrderID:         orderID,
		PaymentMethod:   req.PaymentMethod,
		Amount:          req.Amount,
		PlatformCharges: req.PlatformCharges,
		Tax:             req.Tax,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// Check GET /payments/check/:orderId — только факт существования платежа.
func (h *PaymentHandler) Check(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "orderId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	exists, err := h.payments.Exists(c.Request.Context(), userID, orderID)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// GetByOrder GET /payments/order/:orderId — запись реестра со сверкой.
func (h *PaymentHandler) GetByOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "orderId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := h.payments.GetByOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
