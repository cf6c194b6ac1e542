package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"civil-registry/internal/domain/auditlog"
	"civil-registry/internal/domain/records"
	"civil-registry/internal/domain/records/details"
)

var (
	ErrInvalidPayload = errors.New("invalid backup payload")
)

// Version del formato de backup, heredada del sistema original.
const Version = "2.1"

// Payload es el documento JSON de export/import:
// {version, exportDate, records, logs}.
type Payload struct {
	Version    string          `json:"version"`
	ExportDate time.Time       `json:"exportDate"`
	Records    []recordPayload `json:"records"`
	Logs       []logPayload    `json:"logs"`
}

type recordPayload struct {
	ID                string            `json:"id"`
	Type              string            `json:"type"`
	Kebele            string            `json:"kebele"`
	Status            string            `json:"status"`
	RegistrationDate  time.Time         `json:"registrationDate"`
	ApplicantID       string            `json:"applicantId"`
	Data              json.RawMessage   `json:"data"`
	Documents         []documentPayload `json:"documents"`
	CertificateNumber string            `json:"certificateNumber,omitempty"`
	RejectionReason   string            `json:"rejectionReason,omitempty"`
}

type documentPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

type logPayload struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

type Service struct {
	records *records.Service
	logs    *auditlog.Service
	now     func() time.Time
}

func NewService(recordsSvc *records.Service, logsSvc *auditlog.Service) *Service {
	return &Service{
		records: recordsSvc,
		logs:    logsSvc,
		now:     time.Now,
	}
}

// Export arma el documento de backup con el estado actual del store.
func (s *Service) Export(ctx context.Context) (Payload, error) {
	recs, err := s.records.Search(ctx, records.Filter{})
	if err != nil {
		return Payload{}, err
	}

	logs, err := s.logs.Recent(ctx, auditlog.RecentLimit)
	if err != nil {
		return Payload{}, err
	}

	out := Payload{
		Version:    Version,
		ExportDate: s.now(),
		Records:    make([]recordPayload, 0, len(recs)),
		Logs:       make([]logPayload, 0, len(logs)),
	}

	for _, rec := range recs {
		rp, err := toRecordPayload(rec)
		if err != nil {
			return Payload{}, err
		}
		out.Records = append(out.Records, rp)
	}

	for _, e := range logs {
		out.Logs = append(out.Logs, logPayload{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			UserID:    e.UserID,
			UserName:  e.UserName,
			Action:    e.Action,
			Details:   e.Details,
		})
	}

	return out, nil
}

// Import reemplaza el contenido del store con el documento dado.
// Valida cada registro antes de tocar nada: un payload inválido
// no deja el store a medio reemplazar.
func (s *Service) Import(ctx context.Context, p Payload) error {
	if strings.TrimSpace(p.Version) == "" {
		return ErrInvalidPayload
	}

	recs := make([]records.Record, 0, len(p.Records))
	for _, rp := range p.Records {
		rec, err := fromRecordPayload(rp)
		if err != nil {
			return fmt.Errorf("%w: record %s: %v", ErrInvalidPayload, rp.ID, err)
		}
		recs = append(recs, rec)
	}

	logs := make([]auditlog.Entry, 0, len(p.Logs))
	for _, lp := range p.Logs {
		logs = append(logs, auditlog.Entry{
			ID:        lp.ID,
			Timestamp: lp.Timestamp,
			UserID:    lp.UserID,
			UserName:  lp.UserName,
			Action:    lp.Action,
			Details:   lp.Details,
		})
	}

	if err := s.records.ReplaceAll(ctx, recs); err != nil {
		return err
	}
	return s.logs.ReplaceAll(ctx, logs)
}

func toRecordPayload(rec records.Record) (recordPayload, error) {
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return recordPayload{}, err
	}

	docs := make([]documentPayload, 0, len(rec.Documents))
	for _, d := range rec.Documents {
		docs = append(docs, documentPayload{Name: d.Name, Type: d.MediaType, URL: d.StorageRef})
	}

	return recordPayload{
		ID:                rec.ID,
		Type:              string(rec.Type),
		Kebele:            rec.Kebele,
		Status:            string(rec.Status),
		RegistrationDate:  rec.RegistrationDate,
		ApplicantID:       rec.ApplicantID,
		Data:              raw,
		Documents:         docs,
		CertificateNumber: rec.CertificateNumber,
		RejectionReason:   rec.RejectionReason,
	}, nil
}

func fromRecordPayload(rp recordPayload) (records.Record, error) {
	if strings.TrimSpace(rp.ID) == "" {
		return records.Record{}, errors.New("id required")
	}

	typ := records.EventType(rp.Type)
	if !typ.IsValid() {
		return records.Record{}, details.ErrUnknownEventType
	}
	status := records.Status(rp.Status)
	if !status.IsValid() {
		return records.Record{}, errors.New("invalid status")
	}

	data, err := details.Decode(rp.Type, rp.Data)
	if err != nil {
		return records.Record{}, err
	}

	docs := make([]records.Document, 0, len(rp.Documents))
	for _, d := range rp.Documents {
		docs = append(docs, records.Document{Name: d.Name, MediaType: d.Type, StorageRef: d.URL})
	}

	return records.Record{
		ID:                rp.ID,
		Type:              typ,
		Kebele:            rp.Kebele,
		Status:            status,
		RegistrationDate:  rp.RegistrationDate,
		ApplicantID:       rp.ApplicantID,
		Data:              data,
		Documents:         docs,
		CertificateNumber: rp.CertificateNumber,
		RejectionReason:   rp.RejectionReason,
	}, nil
}
