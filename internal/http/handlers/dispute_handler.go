package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/http/handlers/common"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/service"
	"github.com/ignatzorin/talent-backend/internal/storage"
)

type DisputeHandler struct {
	disputes *service.DisputeService
	media    *repository.MediaRepository
	storage  *storage.FileStorage
}

func NewDisputeHandler(disputes *service.DisputeService, media *repository.MediaRepository, storage *storage.FileStorage) *DisputeHandler {
	return &DisputeHandler{disputes: disputes, media: media, storage: storage}
}

// Create POST /disputes/order/:orderId — multipart с доказательствами.
func (h *DisputeHandler) Create(c *gin.Context) {
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

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondBadRequest(c, "ожидается multipart/form-data")
		return
	}

	subject := c.PostForm("subject")
	description := c.PostForm("description")

	// Файлы сохраняются до записи спора: неудачная загрузка не оставит
	// спор без приложенных доказательств
	var attachmentIDs []uuid.UUID
	for _, file := range form.File["attachments"] {
		media, err := saveUpload(c, h.media, h.storage, userID, file)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		attachmentIDs = append(attachmentIDs, media.ID)
	}

	dispute, err := h.disputes.Create(c.Request.Context(), userID, orderID, service.DisputeInput{
		Subject:       subject,
		Description:   description,
		AttachmentIDs: attachmentIDs,
	})
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dispute)
}

// ListByOrder GET /disputes/order/:orderId
func (h *DisputeHandler) ListByOrder(c *gin.Context) {
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

	disputes, err := h.disputes.ListByOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

// UpdateStatus PATCH /disputes/:id/status — эндпоинт процесса поддержки.
func (h *DisputeHandler) UpdateStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status     string `json:"status" binding:"required"`
		Resolution string `json:"resolution"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "status обязателен")
		return
	}

	dispute, err := h.disputes.UpdateStatus(c.Request.Context(), id, req.Status, req.Resolution)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}
