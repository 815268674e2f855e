package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/middleware"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

type AppointmentHandler struct {
	appointments repository.AppointmentRepository
}

func NewAppointmentHandler(appointments repository.AppointmentRepository) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

type AppointmentRequest struct {
	ClientName string     `json:"client_name" binding:"required"`
	EmployeeID *uuid.UUID `json:"employee_id"`
	Service    string     `json:"service" binding:"required"`
	StartsAt   time.Time  `json:"starts_at" binding:"required"`
	EndsAt     time.Time  `json:"ends_at" binding:"required"`
	Notes      string     `json:"notes"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ends_at must be after starts_at"})
		return
	}

	appointment := &models.Appointment{
		ID:         uuid.New(),
		ClientName: req.ClientName,
		EmployeeID: req.EmployeeID,
		Service:    req.Service,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Status:     models.AppointmentStatusScheduled,
		Notes:      req.Notes,
	}
	if err := authz.AssignOnCreate(middleware.PrincipalFrom(c), appointment); err != nil {
		abortAuthz(c, err)
		return
	}

	if err := h.appointments.Create(c.Request.Context(), appointment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create appointment"})
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	scope := authz.ScopeFor(middleware.PrincipalFrom(c))
	appointments, err := h.appointments.List(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list appointments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	appointment, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, appointment)
}

type AppointmentUpdateRequest struct {
	Status models.AppointmentStatus `json:"status"`
	Notes  *string                  `json:"notes"`
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	appointment, ok := h.load(c)
	if !ok {
		return
	}

	var req AppointmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != "" {
		switch req.Status {
		case models.AppointmentStatusScheduled, models.AppointmentStatusCompleted,
			models.AppointmentStatusCancelled, models.AppointmentStatusNoShow:
			appointment.Status = req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if err := h.appointments.Update(c.Request.Context(), appointment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update appointment"})
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	appointment, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.appointments.Delete(c.Request.Context(), appointment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete appointment"})
		return
	}
	c.Status(http.StatusNoContent)
}

// load fetches the appointment and authorizes the principal against it. A
// cross-tenant id is reported as not found.
func (h *AppointmentHandler) load(c *gin.Context) (*models.Appointment, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	appointment, err := h.appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get appointment"})
		return nil, false
	}

	if err := authz.AuthorizeObject(middleware.PrincipalFrom(c), appointment); err != nil {
		abortAuthz(c, err)
		return nil, false
	}
	return appointment, true
}

// abortAuthz maps authorization errors to HTTP responses.
func abortAuthz(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, authz.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
