package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/leathershop/internal/pricing"
)

type priceHandlers struct {
	service *pricing.Service
}

type setPriceRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	PromoMinor  *int64 `json:"promo_minor"`
	Currency    string `json:"currency"`
}

func (h *priceHandlers) setCurrent(c *gin.Context) {
	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"reason": "invalid_argument", "error": err.Error()})
		return
	}

	rec, err := h.service.SetCurrentPrice(c.Param("product_id"), req.AmountMinor, req.PromoMinor, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPricePayload(rec))
}

func (h *priceHandlers) getCurrent(c *gin.Context) {
	rec, err := h.service.GetCurrentPrice(c.Param("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPricePayload(rec))
}

func (h *priceHandlers) history(c *gin.Context) {
	history, err := h.service.GetHistory(c.Param("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": toPricePayloads(history)})
}
