package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/http/handlers/common"
	"github.com/ignatzorin/talent-backend/internal/service"
)

type JobHandler struct {
	jobs *service.JobService
}

func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type jobRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     *string    `json:"description"`
	Price           float64    `json:"price" binding:"required"`
	Negotiable      bool       `json:"negotiable"`
	EventDate       *time.Time `json:"event_date"`
	LocationName    *string    `json:"location_name"`
	LocationAddress *string    `json:"location_address"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Categories      []string   `json:"categories"`
	Genres          []string   `json:"genres"`
	Languages       []string   `json:"languages"`
	Gender          *string    `json:"gender"`
	RadiusKM        *float64   `json:"radius_km"`
	AttachmentIDs   []string   `json:"attachment_ids"`
}

func (r jobRequest) toInput() (service.JobInput, error) {
	in := service.JobInput{
		Title:           r.Title,
		Description:     r.Description,
		Price:           r.Price,
		Negotiable:      r.Negotiable,
		EventDate:       r.EventDate,
		LocationName:    r.LocationName,
		LocationAddress: r.LocationAddress,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Categories:      r.Categories,
		Genres:          r.Genres,
		Languages:       r.Languages,
		Gender:          r.Gender,
		RadiusKM:        r.RadiusKM,
	}
	for _, raw := range r.AttachmentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return in, err
		}
		in.AttachmentIDs = append(in.AttachmentIDs, id)
	}
	return in, nil
}

// create — общий код Post и Draft, различаются только стартовым статусом.
func (h *JobHandler) create(c *gin.Context, asDraft bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "title и price обязательны")
		return
	}

	in, err := req.toInput()
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор вложения")
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), userID, in, asDraft)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// Post POST /jobs/post — публикация объявления.
func (h *JobHandler) Post(c *gin.Context) {
	h.create(c, false)
}

// Draft POST /jobs/draft — сохранение черновика.
func (h *JobHandler) Draft(c *gin.Context) {
	h.create(c, true)
}

// Get GET /jobs/job/:id
func (h *JobHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListMine GET /jobs/buyer?status=
func (h *JobHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	jobs, err := h.jobs.ListByBuyer(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// Update PUT /jobs/job/:id
func (h *JobHandler) Update(c *gin.Context) {
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

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "title и price обязательны")
		return
	}

	in, err := req.toInput()
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор вложения")
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ChangeStatus PATCH /jobs/job/:id/status
func (h *JobHandler) ChangeStatus(c *gin.Context) {
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
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "status обязателен")
		return
	}

	job, err := h.jobs.ChangeStatus(c.Request.Context(), userID, id, req.Status)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Delete DELETE /jobs/job/:id
func (h *JobHandler) Delete(c *gin.Context) {
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

	if err := h.jobs.Delete(c.Request.Context(), userID, id); err != nil {
		common.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
