package sequence

import (
	"fmt"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// idFormat описывает префикс и ширину нулевого заполнения внешнего ID.
type idFormat struct {
	prefix string
	width  int
}

var idFormats = map[domain.EntityType]idFormat{
	domain.EntityProducts:   {prefix: "PROD", width: 4},
	domain.EntityOrders:     {prefix: "PED", width: 5},
	domain.EntityCategories: {prefix: "CAT", width: 3},
	domain.EntityUsers:      {prefix: "USER", width: 3},
	domain.EntityPrices:     {prefix: "PRICE", width: 4},
	domain.EntityStocks:     {prefix: "STOCK", width: 4},
}

// FormatID преобразует (тип сущности, номер) во внешний идентификатор
// вида PREFIX-NNNN. Числа шире заполнения не усекаются, строка просто
// удлиняется. Для незнакомого типа возвращается запасной формат ID-<n>.
func FormatID(entity domain.EntityType, n int64) string {
	f, ok := idFormats[entity]
	if !ok {
		return fmt.Sprintf("ID-%d", n)
	}
	return fmt.Sprintf("%s-%0*d", f.prefix, f.width, n)
}
