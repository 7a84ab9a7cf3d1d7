package domain

import "time"

// Product — товар каталога. Ядро читает его только для валидации ссылок,
// CRUD каталога живёт в отдельном слое и сюда не входит.
type Product struct {
	// ID — внешний человекочитаемый идентификатор (например, PROD-1007).
	ID string
	// CategoryID — ссылка на категорию каталога.
	CategoryID string
	Name       string
	CreatedAt  time.Time

	Lifecycle Lifecycle
}
