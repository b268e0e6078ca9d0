package entity

import "time"

// WarehouseStatus ciclo de vida de una bodega.
type WarehouseStatus string

const (
	WarehouseStatusPublic   WarehouseStatus = "Public"
	WarehouseStatusPrivate  WarehouseStatus = "Private"
	WarehouseStatusInactive WarehouseStatus = "Inactive"
)

// Valid indica si el estado pertenece al conjunto cerrado.
func (s WarehouseStatus) Valid() bool {
	switch s {
	case WarehouseStatusPublic, WarehouseStatusPrivate, WarehouseStatusInactive:
		return true
	}
	return false
}

// Warehouse representa una bodega (inventario) administrada por uno o más dueños.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	Status    WarehouseStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active indica si la bodega acepta movimientos nuevos.
func (w *Warehouse) Active() bool {
	return w.Status != WarehouseStatusInactive
}
