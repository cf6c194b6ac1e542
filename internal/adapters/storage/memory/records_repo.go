package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"civil-registry/internal/domain/records"
)

type recordsRepo struct {
	mu     sync.RWMutex
	byID   map[string]records.Record
	byCert map[string]string // certificateNumber -> record id
}

func NewRecordsRepo() records.Repository {
	return &recordsRepo{
		byID:   make(map[string]records.Record),
		byCert: make(map[string]string),
	}
}

func (r *recordsRepo) Create(ctx context.Context, rec records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}
	if rec.CertificateNumber != "" {
		if _, exists := r.byCert[rec.CertificateNumber]; exists {
			return records.ErrDuplicateCertificate
		}
		r.byCert[rec.CertificateNumber] = rec.ID
	}

	r.byID[rec.ID] = rec
	return nil
}

func (r *recordsRepo) GetByID(ctx context.Context, id string) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return records.Record{}, records.ErrNotFound
	}
	return rec, nil
}

func (r *recordsRepo) Search(ctx context.Context, f records.Filter) ([]records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.Record, 0)

	for _, rec := range r.byID {
		if f.Type != "" && rec.Type != f.Type {
			continue
		}
		if f.Kebele != "" && rec.Kebele != f.Kebele {
			continue
		}
		if f.ApplicantID != "" && rec.ApplicantID != f.ApplicantID {
			continue
		}

		// Búsqueda libre: substring case-insensitive contra el id
		// o contra el payload serializado (como el LIKE del original).
		if q := strings.TrimSpace(f.Search); q != "" {
			raw, _ := json.Marshal(rec.Data)
			hay := strings.ToLower(rec.ID + " " + string(raw))
			if !strings.Contains(hay, strings.ToLower(q)) {
				continue
			}
		}

		out = append(out, rec)
	}

	// Orden por registrationDate desc (más reciente primero)
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegistrationDate.After(out[j].RegistrationDate)
	})

	return out, nil
}

func (r *recordsRepo) UpdateStatus(ctx context.Context, upd records.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[upd.ID]
	if !ok {
		return records.ErrNotFound
	}

	// Compare-and-swap: si el status cambió desde la lectura,
	// la transición concurrente ya ganó.
	if rec.Status != upd.From {
		return records.ErrConflict
	}

	if upd.CertificateNumber != "" {
		if owner, exists := r.byCert[upd.CertificateNumber]; exists && owner != rec.ID {
			return records.ErrDuplicateCertificate
		}
		r.byCert[upd.CertificateNumber] = rec.ID
		rec.CertificateNumber = upd.CertificateNumber
	}
	if upd.RejectionReason != "" {
		rec.RejectionReason = upd.RejectionReason
	}

	rec.Status = upd.To
	r.byID[upd.ID] = rec
	return nil
}

func (r *recordsRepo) ReplaceAll(ctx context.Context, recs []records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID := make(map[string]records.Record, len(recs))
	byCert := make(map[string]string)

	for _, rec := range recs {
		if rec.ID == "" {
			return errors.New("record id required")
		}
		if _, exists := byID[rec.ID]; exists {
			return errors.New("duplicate record id: " + rec.ID)
		}
		if rec.CertificateNumber != "" {
			if _, exists := byCert[rec.CertificateNumber]; exists {
				return records.ErrDuplicateCertificate
			}
			byCert[rec.CertificateNumber] = rec.ID
		}
		byID[rec.ID] = rec
	}

	r.byID = byID
	r.byCert = byCert
	return nil
}
