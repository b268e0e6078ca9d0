package entity

import "time"

// LendKind tipo de transacción de préstamo.
type LendKind string

const (
	LendKindBorrow LendKind = "BORROW" // el solicitante retira stock de la bodega origen
	LendKindLend   LendKind = "LEND"   // el solicitante deposita stock en la bodega origen
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (k LendKind) Valid() bool {
	return k == LendKindBorrow || k == LendKindLend
}

// LendStatus estado de la máquina de préstamos.
type LendStatus string

const (
	LendStatusPending  LendStatus = "Pending"
	LendStatusActive   LendStatus = "Active"
	LendStatusRejected LendStatus = "Rejected"
	LendStatusReturned LendStatus = "Returned"
)

// Valid indica si el estado pertenece al conjunto cerrado.
func (s LendStatus) Valid() bool {
	switch s {
	case LendStatusPending, LendStatusActive, LendStatusRejected, LendStatusReturned:
		return true
	}
	return false
}

// Terminal indica que no se permiten más transiciones.
func (s LendStatus) Terminal() bool {
	return s == LendStatusRejected || s == LendStatusReturned
}

// CanTransitionTo Pending -> Active|Rejected, Active -> Returned.
func (s LendStatus) CanTransitionTo(next LendStatus) bool {
	switch s {
	case LendStatusPending:
		return next == LendStatusActive || next == LendStatusRejected
	case LendStatusActive:
		return next == LendStatusReturned
	}
	return false
}

// LendTransaction préstamo (BORROW) o depósito (LEND) entre un solicitante y una bodega.
// Referencia filas del libro por (bodega, ítem); los efectos se aplican en la transición.
type LendTransaction struct {
	ID                     string
	RequesterID            string
	Kind                   LendKind
	SourceWarehouseID      string
	DestinationWarehouseID string // solo BORROW; vacío si no aplica
	ItemID                 string
	Quantity               int64
	Status                 LendStatus
	Note                   string
	DecidedBy              string
	CreatedAt              time.Time
	DecidedAt              *time.Time
	ReturnedAt             *time.Time
}

// HasDestination indica si el préstamo deposita en una bodega del solicitante.
func (t *LendTransaction) HasDestination() bool {
	return t.DestinationWarehouseID != ""
}
