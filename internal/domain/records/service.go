package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"civil-registry/internal/domain/auditlog"
	"civil-registry/internal/domain/kebeles"
	"civil-registry/internal/domain/records/details"
	"civil-registry/internal/domain/records/metrics"
	"civil-registry/internal/domain/users"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// ErrBadState: la transición pedida no existe en la matriz
	// para el status actual del registro.
	ErrBadState = errors.New("invalid transition")

	// ErrConflict: transición concurrente perdida o números de
	// certificado agotados. Retryable para el humano.
	ErrConflict = errors.New("conflict")

	// ErrDuplicateCertificate: violación de unicidad del número de
	// certificado en el store. El workflow regenera y reintenta.
	ErrDuplicateCertificate = errors.New("duplicate certificate number")

	ErrNoDocuments      = errors.New("at least one document upload is required")
	ErrMissingSelection = errors.New("event type and kebele are required")
)

// Recorder emite una entrada de auditoría tras cada operación exitosa.
// Lo implementa auditlog.Service.
type Recorder interface {
	Record(ctx context.Context, userID, userName, action, details string)
}

type Service struct {
	repo    Repository
	audit   Recorder
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, audit Recorder, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		audit:   audit,
		metrics: m,
		now:     time.Now,
		newID:   newRegistrationID,
	}
}

type CreateInput struct {
	// ID opcional: el cliente original lo genera (REG-XXXXXXXXX).
	// Vacío => lo asigna el workflow.
	ID string

	Type   EventType
	Kebele string

	Data      details.EventData
	Documents []Document

	// ApplicantID opcional: un DATA_CLERK puede registrar en nombre de
	// un ciudadano. Para un CITIZEN siempre es su propio id.
	ApplicantID string
}

// Create valida y persiste un registro nuevo en estado PENDING.
// Las violaciones de precondición (sin documentos, campo requerido vacío,
// tipo/kebele sin seleccionar) vuelven como errores corregibles por el
// usuario, nunca como panic ni como mutación parcial.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (Record, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return Record{}, ErrInvalidInput
	}
	if !in.Type.IsValid() || strings.TrimSpace(in.Kebele) == "" {
		return Record{}, ErrMissingSelection
	}
	if !kebeles.IsValid(in.Kebele) {
		return Record{}, ErrMissingSelection
	}
	if len(in.Documents) == 0 {
		return Record{}, ErrNoDocuments
	}
	if in.Data == nil {
		return Record{}, ErrInvalidInput
	}
	if err := in.Data.Validate(); err != nil {
		return Record{}, err
	}

	applicantID := strings.TrimSpace(in.ApplicantID)
	if applicantID == "" || actor.Role == users.RoleCitizen {
		applicantID = actor.ID
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.newID()
	}

	docs := make([]Document, 0, len(in.Documents))
	for _, d := range in.Documents {
		if strings.TrimSpace(d.Name) == "" {
			return Record{}, ErrInvalidInput
		}
		if strings.TrimSpace(d.StorageRef) == "" {
			d.StorageRef = "uploads/" + uuid.NewString()
		}
		docs = append(docs, d)
	}

	rec := Record{
		ID:               id,
		Type:             in.Type,
		Kebele:           strings.TrimSpace(in.Kebele),
		Status:           StatusPending,
		RegistrationDate: s.now(),
		ApplicantID:      applicantID,
		Data:             in.Data,
		Documents:        docs,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}

	if s.metrics != nil {
		s.metrics.IncRecordCreated(string(rec.Type))
	}
	if s.audit != nil {
		s.audit.Record(ctx, actor.ID, actor.Name, auditlog.ActionCreateRecord,
			fmt.Sprintf("Created %s registration %s.", rec.Type, rec.ID))
	}

	return rec, nil
}

// Transition mueve un registro por el workflow. Solo ADMIN/SUPERVISOR.
// La primera aprobación asigna el número de certificado; una colisión
// en el store regenera el candidato y reintenta (acotado). La escritura
// es condicionada al status leído: una carrera perdida vuelve ErrConflict.
func (s *Service) Transition(ctx context.Context, actor Actor, id string, newStatus Status, reason string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" || !newStatus.IsValid() {
		return Record{}, ErrInvalidInput
	}

	if !RoleCanReview(actor.Role) {
		return Record{}, ErrForbidden
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}

	// Re-aprobación idempotente: no-op sobre el certificado ya asignado.
	if rec.Status == newStatus && rec.Status.IsTerminal() {
		return rec, nil
	}

	if !TransitionAllowed(rec.Status, newStatus) {
		return Record{}, ErrBadState
	}

	start := s.now()

	switch {
	case newStatus == StatusApproved && rec.CertificateNumber == "":
		if err := s.approve(ctx, rec); err != nil {
			return Record{}, err
		}
	case newStatus == StatusRejected:
		err = s.repo.UpdateStatus(ctx, StatusUpdate{
			ID:              rec.ID,
			From:            rec.Status,
			To:              StatusRejected,
			RejectionReason: strings.TrimSpace(reason),
		})
		if err != nil {
			return Record{}, err
		}
	default:
		err = s.repo.UpdateStatus(ctx, StatusUpdate{
			ID:   rec.ID,
			From: rec.Status,
			To:   newStatus,
		})
		if err != nil {
			return Record{}, err
		}
	}

	updated, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		return Record{}, err
	}

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(newStatus), start)
	}
	if s.audit != nil {
		s.audit.Record(ctx, actor.ID, actor.Name, auditlog.ActionUpdateRecord,
			fmt.Sprintf("Updated status of record %s to %s", updated.ID, updated.Status))
	}

	return updated, nil
}

func (s *Service) approve(ctx context.Context, rec Record) error {
	for attempt := 0; attempt < maxCertificateAttempts; attempt++ {
		cert := newCertificateNumber(s.now(), attempt)

		err := s.repo.UpdateStatus(ctx, StatusUpdate{
			ID:                rec.ID,
			From:              rec.Status,
			To:                StatusApproved,
			CertificateNumber: cert,
		})
		if errors.Is(err, ErrDuplicateCertificate) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: could not assign a unique certificate number", ErrConflict)
}

// Search ejecuta el filtro sin restricción de rol. Re-consultar con el
// mismo filtro es idempotente; solo cambia si el store cambió.
func (s *Service) Search(ctx context.Context, f Filter) ([]Record, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.Kebele = strings.TrimSpace(f.Kebele)
	return s.repo.Search(ctx, f)
}

// ListForUser aplica la vista por rol: un CITIZEN solo ve sus propios
// trámites; el resto ve todo (sujeto al filtro).
func (s *Service) ListForUser(ctx context.Context, actor Actor, f Filter) ([]Record, error) {
	if actor.Role == users.RoleCitizen {
		f.ApplicantID = actor.ID
	}
	return s.Search(ctx, f)
}

// GetForActor devuelve un registro respetando la vista por rol.
// Para un CITIZEN ajeno responde not found, sin filtrar existencia.
func (s *Service) GetForActor(ctx context.Context, actor Actor, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if actor.Role == users.RoleCitizen && rec.ApplicantID != actor.ID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// ReplaceAll reemplaza el contenido del store (restore de backup).
func (s *Service) ReplaceAll(ctx context.Context, recs []Record) error {
	return s.repo.ReplaceAll(ctx, recs)
}
