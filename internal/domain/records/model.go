package records

import (
	"time"

	"civil-registry/internal/domain/records/details"
)

// Document describe un archivo adjunto al registro.
type Document struct {
	Name       string
	MediaType  string
	StorageRef string
}

// Record es un registro de evento vital.
// CertificateNumber se asigna una sola vez, en la primera aprobación,
// y es único entre todos los registros aprobados.
type Record struct {
	ID     string
	Type   EventType
	Kebele string

	Status           Status
	RegistrationDate time.Time
	ApplicantID      string

	Data      details.EventData
	Documents []Document

	CertificateNumber string
	RejectionReason   string
}
