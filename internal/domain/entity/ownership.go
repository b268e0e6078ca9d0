package entity

import "time"

// Ownership relación usuario-bodega que habilita la administración de la bodega.
type Ownership struct {
	WarehouseID string
	UserID      string
	CreatedAt   time.Time
}
