package domain

// Role — роль вызывающего, извлечённая вышестоящим слоем аутентификации.
// Ядро различает только «empleado» (видит свои заказы) и всех остальных.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmpleado Role = "empleado"
)
