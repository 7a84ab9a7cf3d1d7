package httpapi

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/order"
	"github.com/vladislavdragonenkov/leathershop/internal/pricing"
	"github.com/vladislavdragonenkov/leathershop/internal/sequence"
	"github.com/vladislavdragonenkov/leathershop/internal/stock"
)

// Services собирает прикладные сервисы, которые публикует API.
type Services struct {
	Orders    *order.Service
	Stock     *stock.Service
	Pricing   *pricing.Service
	Sequences *sequence.Generator
}

// NewRouter строит gin-роутер со всеми маршрутами API.
func NewRouter(services Services, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	orders := &orderHandlers{service: services.Orders}
	stocks := &stockHandlers{service: services.Stock}
	prices := &priceHandlers{service: services.Pricing}
	sequences := &sequenceHandlers{generator: services.Sequences}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", orders.place)
		v1.GET("/orders", orders.list)
		v1.GET("/orders/:id", orders.get)
		v1.PUT("/orders/:id/status", orders.setStatus)

		v1.POST("/stocks", stocks.create)
		v1.GET("/stocks/low", stocks.listBelowMinimum)
		v1.GET("/stocks/:product_id", stocks.get)
		v1.PUT("/stocks/:product_id/quantity", stocks.setQuantity)
		v1.POST("/stocks/:product_id/adjust", stocks.adjust)
		v1.GET("/stocks/:product_id/movements", stocks.movements)

		v1.GET("/products/:product_id/price", prices.getCurrent)
		v1.PUT("/products/:product_id/price", prices.setCurrent)
		v1.GET("/products/:product_id/price/history", prices.history)

		v1.POST("/sequences/:entity_type/next", sequences.next)
	}

	return router
}

// requestLogger пишет одну строку на запрос в общем формате сервиса.
func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		entry := logger.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("request failed")
			return
		}
		entry.Debug("request handled")
	}
}
