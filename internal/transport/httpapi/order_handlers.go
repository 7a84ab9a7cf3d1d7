package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/order"
)

type orderHandlers struct {
	service *order.Service
}

type placeOrderRequest struct {
	Customer customerPayload    `json:"customer"`
	Items    []orderItemPayload `json:"items"`
	VendorID string             `json:"vendor_id"`
	Notes    string             `json:"notes"`
}

func (h *orderHandlers) place(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"reason": "invalid_argument", "error": err.Error()})
		return
	}

	items := make([]order.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.LineItem{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}

	placed, err := h.service.Place(domain.Customer{
		Name:    req.Customer.Name,
		Email:   req.Customer.Email,
		Phone:   req.Customer.Phone,
		Address: req.Customer.Address,
	}, items, req.VendorID, req.Notes)
	if err != nil {
		// Заказ мог остаться сохранённым при частичном списании: клиент
		// получает ошибку, сверка выполняется по журналу движений.
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderPayload(placed))
}

func (h *orderHandlers) list(c *gin.Context) {
	role, callerID := callerIdentity(c)

	orders, err := h.service.List(role, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": toOrderPayloads(orders)})
}

func (h *orderHandlers) get(c *gin.Context) {
	role, callerID := callerIdentity(c)

	found, err := h.service.GetByID(c.Param("id"), role, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderPayload(found))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *orderHandlers) setStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"reason": "invalid_argument", "error": err.Error()})
		return
	}

	if err := h.service.SetStatus(c.Param("id"), domain.OrderStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}
