package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidTransition      = errors.New("transición de estado inválida")
	ErrLastOwner              = errors.New("no se puede quitar el último dueño de la bodega")
	ErrConcurrentModification = errors.New("modificación concurrente, reintente")
	ErrWarehouseInactive      = errors.New("bodega inactiva")
	ErrDuplicateRequest       = errors.New("solicitud duplicada")
)
