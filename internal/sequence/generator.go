package sequence

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// seeds задаёт начальные значения счётчиков по типам сущностей.
// Диапазоны разнесены, чтобы идентификаторы визуально различались.
var seeds = map[domain.EntityType]int64{
	domain.EntityProducts:   1000,
	domain.EntityCategories: 10,
	domain.EntityUsers:      100,
	domain.EntityOrders:     5000,
	domain.EntityPrices:     2000,
	domain.EntityStocks:     3000,
}

const defaultSeed = 1

// Generator выдаёт уникальные монотонные номера по типам сущностей.
// Единственный компонент, которому хранилище обязано предоставить
// атомарное «прочитать-увеличить-записать»: подмена на независимую пару
// чтения и записи привела бы к дублям под конкурентной нагрузкой.
type Generator struct {
	repo   domain.SequenceRepository
	logger *log.Entry
	// now подменяется в тестах для детерминированного fallback.
	now func() time.Time
}

// NewGenerator создаёт генератор поверх хранилища счётчиков.
func NewGenerator(repo domain.SequenceRepository, logger *log.Entry) *Generator {
	if logger == nil {
		logger = log.WithField("component", "sequence")
	}
	return &Generator{repo: repo, logger: logger, now: time.Now}
}

// Seed возвращает настроенное начальное значение для типа сущности.
func Seed(entity domain.EntityType) int64 {
	if seed, ok := seeds[entity]; ok {
		return seed
	}
	return defaultSeed
}

// Next возвращает следующий номер последовательности для типа сущности.
// Ошибку хранилища наружу не отдаёт: при сорванной транзакции возвращает
// значение, производное от часов (уникальное, но не последовательное),
// жертвуя строгой последовательностью ради живучести.
func (g *Generator) Next(entity domain.EntityType) int64 {
	return g.NextNamed(string(entity), Seed(entity))
}

// NextNamed — то же, что Next, но для произвольного имени счётчика
// (например, помесячного счётчика номеров заказов).
func (g *Generator) NextNamed(name string, seed int64) int64 {
	value, err := g.repo.Next(name, seed)
	if err != nil {
		fallback := g.now().UnixMilli()
		g.logger.WithError(err).WithFields(log.Fields{
			"counter":  name,
			"fallback": fallback,
		}).Warn("sequence transaction failed, using clock-derived value")
		return fallback
	}
	return value
}
