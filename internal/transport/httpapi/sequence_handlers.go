package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/sequence"
)

type sequenceHandlers struct {
	generator *sequence.Generator
}

func (h *sequenceHandlers) next(c *gin.Context) {
	entity := domain.EntityType(c.Param("entity_type"))

	value := h.generator.Next(entity)
	c.JSON(http.StatusOK, gin.H{
		"entity_type": string(entity),
		"value":       value,
		"id":          sequence.FormatID(entity, value),
	})
}
