package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Los tipos de abajo envuelven uno de estos
// sentinels, así que errors.Is(err, ErrNotFound) funciona sobre cualquier *NotFoundError.
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStorage           = errors.New("error de almacenamiento")
	ErrUnauthorized      = errors.New("no autorizado")
)

// ValidationError campo requerido ausente o vacío; el cliente debe corregir la petición.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s es requerido", e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ConflictError valor duplicado en un campo único (p. ej. sku).
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q ya existe", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError recurso inexistente identificado por Key.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError la salida pedida supera el stock actual. Stock se reporta al cliente.
type InsufficientStockError struct {
	SKU       string
	Stock     int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.SKU, e.Stock, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError fallo inesperado de persistencia. Nunca se expone el detalle al cliente.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError envuelve err como StorageError (nil si err es nil).
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// ConstraintKind tipo de restricción violada en la base de datos.
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintForeignKey ConstraintKind = "foreign_key"
)

// ConstraintError restricción violada reportada por el adaptador de persistencia.
// Field identifica la columna afectada ("sku", "stock", "product_id").
type ConstraintError struct {
	Kind  ConstraintKind
	Field string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("restricción %s violada en %s", e.Kind, e.Field)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IsConstraint indica si err es una violación de la restricción kind sobre field.
func IsConstraint(err error, kind ConstraintKind, field string) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Kind == kind && ce.Field == field
}
