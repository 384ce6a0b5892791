package medications

import (
	"context"

	"siam-adherence/internal/domain/ownership"
)

// OwnerOf expone el userID dueño de un medicamento.
// Lo usan alerts y adherence (vía ownership.Lookup) sin importar este paquete entero.
func (s *Service) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return s.repo.OwnerOf(ctx, id)
}

// Owned devuelve el medicamento si pertenece a userID; ErrNotFound si no existe o es ajeno.
func (s *Service) Owned(ctx context.Context, userID, id int64) (Medication, error) {
	if err := ownership.Check(ctx, s.repo, userID, id); err != nil {
		return Medication{}, err
	}
	return s.repo.GetByID(ctx, id)
}
