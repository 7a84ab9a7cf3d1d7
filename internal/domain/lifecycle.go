package domain

import "time"

// Lifecycle — переиспользуемое состояние «мягкого» удаления.
// Вместо разбросанных по сущностям булевых флагов каждая запись,
// которую нельзя удалять физически, встраивает этот объект.
type Lifecycle struct {
	Active    bool
	RetiredAt *time.Time
}

// ActiveLifecycle возвращает состояние живой записи.
func ActiveLifecycle() Lifecycle {
	return Lifecycle{Active: true}
}

// Retire переводит запись в архивное состояние, фиксируя момент.
func (l *Lifecycle) Retire(at time.Time) {
	l.Active = false
	retired := at.UTC()
	l.RetiredAt = &retired
}
