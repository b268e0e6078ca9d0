package entity

import "time"

// Category agrupa tipos de ítem (agua, alimentos, herramientas...).
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ItemType definición inmutable de un ítem del catálogo; no pertenece a ninguna bodega.
type ItemType struct {
	ID         string
	Name       string
	CategoryID string
	Unit       string // unidad de medida: unidad, caja, litro, kg
	CreatedAt  time.Time
}
