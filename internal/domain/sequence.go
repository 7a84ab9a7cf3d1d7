package domain

// EntityType — тип сущности для нумерации последовательностей.
// Значения унаследованы от исходной схемы данных магазина.
type EntityType string

const (
	EntityProducts   EntityType = "productos"
	EntityCategories EntityType = "categorias"
	EntityUsers      EntityType = "usuarios"
	EntityOrders     EntityType = "pedidos"
	EntityPrices     EntityType = "precios"
	EntityStocks     EntityType = "stocks"
)

// SequenceCounter — персистентный монотонный счётчик, по одному на тип сущности.
// Счётчики создаются лениво при первом обращении с типовым начальным значением.
type SequenceCounter struct {
	Name  string
	Value int64
}
