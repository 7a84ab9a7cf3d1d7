package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/stock"
)

type stockHandlers struct {
	service *stock.Service
}

type createStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// Minimum по умолчанию — доменный порог; -1 в JSON означает «не задан».
	Minimum  *int   `json:"minimum"`
	Location string `json:"location"`
}

func (h *stockHandlers) create(c *gin.Context) {
	var req createStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"reason": "invalid_argument", "error": err.Error()})
		return
	}

	minimum := -1
	if req.Minimum != nil {
		minimum = *req.Minimum
	}

	rec, err := h.service.Create(req.ProductID, req.Quantity, minimum, req.Location)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toStockPayload(rec))
}

func (h *stockHandlers) get(c *gin.Context) {
	rec, err := h.service.Get(c.Param("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStockPayload(rec))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *stockHandlers) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"reason": "invalid_argument", "error": err.Error()})
		return
	}

	productID := c.Param("product_id")
	if err := h.service.SetQuantity(productID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": productID, "quantity": req.Quantity})
}

type adjustStockRequest struct {
	Delta     int    `json:"delta"`
	Direction string `json:"direction"`
}

func (h *stockHandlers) adjust(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"reason": "invalid_argument", "error": err.Error()})
		return
	}

	adj, err := h.service.Adjust(c.Param("product_id"), req.Delta, domain.AdjustDirection(req.Direction))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": adj.ProductID,
		"previous":   adj.Previous,
		"new":        adj.New,
		"delta":      adj.Delta,
		"direction":  string(adj.Direction),
	})
}

func (h *stockHandlers) listBelowMinimum(c *gin.Context) {
	records, err := h.service.ListBelowMinimum()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stocks": toStockPayloads(records)})
}

func (h *stockHandlers) movements(c *gin.Context) {
	movements, err := h.service.Movements(c.Param("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"movements": toMovementPayloads(movements)})
}
