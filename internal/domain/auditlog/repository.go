package auditlog

import "context"

type Repository interface {
	// Append inserta la entrada y devuelve la versión almacenada
	// (con el ID asignado por el store).
	Append(ctx context.Context, e Entry) (Entry, error)

	// Recent devuelve hasta limit entradas, más recientes primero.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// ReplaceAll reemplaza el contenido completo (restore de backup).
	ReplaceAll(ctx context.Context, entries []Entry) error
}
