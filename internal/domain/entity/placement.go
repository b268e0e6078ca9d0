package entity

import "time"

// PlacementStatus estado de la cantidad de un ítem dentro de una bodega.
type PlacementStatus string

const (
	PlacementAvailable   PlacementStatus = "Available"
	PlacementLent        PlacementStatus = "Lent"     // prestado a otra parte
	PlacementBorrowed    PlacementStatus = "Borrowed" // en préstamo desde otra bodega
	PlacementUnavailable PlacementStatus = "Unavailable"
)

// PlacementStatuses conjunto cerrado, en el orden usado para listados.
var PlacementStatuses = []PlacementStatus{
	PlacementAvailable, PlacementLent, PlacementBorrowed, PlacementUnavailable,
}

// Valid indica si el estado pertenece al conjunto cerrado.
func (s PlacementStatus) Valid() bool {
	for _, v := range PlacementStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Placement fila del libro: cantidad de un ítem en una bodega bajo un estado.
// Identidad compuesta (WarehouseID, ItemID, Status). Quantity nunca es negativa.
type Placement struct {
	WarehouseID string
	ItemID      string
	Status      PlacementStatus
	Quantity    int64
	UpdatedAt   time.Time
}
