package domain

// Roles reconocidos en el token. El rol admin es el administrador del sistema.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Actor identidad ya autenticada que invoca una operación del núcleo.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin indica si el actor es administrador del sistema.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
