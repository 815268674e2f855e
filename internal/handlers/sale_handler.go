package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/middleware"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

type SaleHandler struct {
	sales repository.SaleRepository
}

func NewSaleHandler(sales repository.SaleRepository) *SaleHandler {
	return &SaleHandler{sales: sales}
}

type SaleRequest struct {
	Items    []models.SaleItem `json:"items" binding:"required,min=1"`
	Currency string            `json:"currency"`
}

func (h *SaleHandler) Create(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total := 0.0
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale item"})
			return
		}
		total += float64(item.Quantity) * item.UnitPrice
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	p := middleware.PrincipalFrom(c)
	sale := &models.Sale{
		ID:       uuid.New(),
		Items:    req.Items,
		Total:    total,
		Currency: currency,
	}
	if p != nil {
		sale.CashierID = p.UserID
	}
	if err := authz.AssignOnCreate(p, sale); err != nil {
		abortAuthz(c, err)
		return
	}

	if err := h.sales.Create(c.Request.Context(), sale); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create sale"})
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) List(c *gin.Context) {
	scope := authz.ScopeFor(middleware.PrincipalFrom(c))
	sales, err := h.sales.List(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sales"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	sale, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sale"})
		return
	}

	if err := authz.AuthorizeObject(middleware.PrincipalFrom(c), sale); err != nil {
		abortAuthz(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}
