package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// reasonStatus переводит перечислимую причину отказа в HTTP-статус.
var reasonStatus = map[string]int{
	"not_found":          http.StatusNotFound,
	"conflict":           http.StatusConflict,
	"insufficient_stock": http.StatusUnprocessableEntity,
	"forbidden":          http.StatusForbidden,
	"store_unavailable":  http.StatusServiceUnavailable,
	"invalid_argument":   http.StatusBadRequest,
}

// respondError отдаёт клиенту причину отказа и сообщение.
// Сырая ошибка хранилища наружу не уходит: для временных отказов
// сообщение подменяется нейтральным текстом.
func respondError(c *gin.Context, err error) {
	reason := domain.FailureReason(err)

	status, ok := reasonStatus[reason]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if reason == "store_unavailable" {
		message = "store is temporarily unavailable"
	}

	c.JSON(status, gin.H{
		"reason": reason,
		"error":  message,
	})
}

// callerIdentity извлекает роль и идентификатор пользователя, которые
// уже проставлены вышестоящим auth-слоем. Фильтр по продавцу применяется
// только к роли empleado: любая другая роль, включая пустую, видит все
// заказы и в листингах, и при чтении по идентификатору.
func callerIdentity(c *gin.Context) (domain.Role, string) {
	return domain.Role(c.GetHeader("X-User-Role")), c.GetHeader("X-User-Id")
}
