package records

import "context"

// Filter combina los criterios de búsqueda del listado.
// Search es substring case-insensitive contra el id o el payload
// serializado; Type y Kebele son match exacto; ApplicantID acota la
// vista de un ciudadano a sus propios trámites.
type Filter struct {
	Search      string
	Type        EventType
	Kebele      string
	ApplicantID string
}

// StatusUpdate es la escritura condicionada de una transición.
// El update solo aplica si el status persistido sigue siendo From
// (compare-and-swap); una carrera perdida se reporta como ErrConflict.
type StatusUpdate struct {
	ID   string
	From Status
	To   Status

	// CertificateNumber se setea solo en la primera aprobación.
	CertificateNumber string
	RejectionReason   string
}

type Repository interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, id string) (Record, error)

	// Search devuelve registros que matchean el filtro,
	// ordenados por registrationDate descendente.
	Search(ctx context.Context, f Filter) ([]Record, error)

	// UpdateStatus aplica la transición condicionada. Errores esperables:
	// ErrNotFound, ErrConflict (CAS perdido), ErrDuplicateCertificate.
	UpdateStatus(ctx context.Context, upd StatusUpdate) error

	// ReplaceAll reemplaza el contenido completo (restore de backup).
	ReplaceAll(ctx context.Context, recs []Record) error
}
