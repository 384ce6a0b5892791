// Package ownership centraliza la regla "el recurso pertenece al usuario que actúa".
// Todas las operaciones por recurso (medicamentos, responsables, alertas, registro de dosis)
// pasan por Check antes de leer o escribir.
package ownership

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound lo devuelven los repos cuando no existe el registro y Check cuando el recurso
// es de otro usuario: no distinguimos ambos casos para no filtrar existencia de IDs ajenos.
var ErrNotFound = errors.New("not found")

// Lookup resuelve el dueño de un recurso.
type Lookup interface {
	OwnerOf(ctx context.Context, id int64) (int64, error)
}

// LookupFunc adapta una función a Lookup.
type LookupFunc func(ctx context.Context, id int64) (int64, error)

func (f LookupFunc) OwnerOf(ctx context.Context, id int64) (int64, error) { return f(ctx, id) }

func Check(ctx context.Context, lookup Lookup, userID, resourceID int64) error {
	if userID <= 0 || resourceID <= 0 {
		return ErrNotFound
	}
	owner, err := lookup.OwnerOf(ctx, resourceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ownership lookup: %w", err)
	}
	if owner != userID {
		return ErrNotFound
	}
	return nil
}
