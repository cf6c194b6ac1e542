package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"civil-registry/internal/domain/records"
	"civil-registry/internal/domain/records/details"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

const recordColumns = `
	record_id, event_type, kebele_id,
	status, registration_date, applicant_id,
	metadata, documents,
	certificate_number, rejection_reason
`

// documentRow es la forma JSONB de un adjunto en la columna documents.
type documentRow struct {
	Name       string `json:"name"`
	MediaType  string `json:"media_type"`
	StorageRef string `json:"storage_ref"`
}

func (r *RecordsRepo) Create(ctx context.Context, rec records.Record) error {
	metadata, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal record data: %w", err)
	}
	docs, err := marshalDocuments(rec.Documents)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO vital_records (
			record_id, event_type, kebele_id,
			status, registration_date, applicant_id,
			metadata, documents,
			certificate_number, rejection_reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),NULLIF($10,''))
	`,
		rec.ID,
		string(rec.Type),
		rec.Kebele,
		string(rec.Status),
		rec.RegistrationDate,
		rec.ApplicantID,
		metadata,
		docs,
		rec.CertificateNumber,
		rec.RejectionReason,
	)
	return mapUniqueViolation(err)
}

func (r *RecordsRepo) GetByID(ctx context.Context, id string) (records.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return records.Record{}, records.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM vital_records
		WHERE record_id = $1
	`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records.Record{}, records.ErrNotFound
		}
		return records.Record{}, err
	}
	return rec, nil
}

func (r *RecordsRepo) Search(ctx context.Context, f records.Filter) ([]records.Record, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + recordColumns + `
		FROM vital_records
		WHERE 1=1
	`)

	args := []any{}
	argN := 1

	// Búsqueda libre contra el id o el payload serializado,
	// como el LIKE sobre metadata del sistema original.
	if q := strings.TrimSpace(f.Search); q != "" {
		sb.WriteString(fmt.Sprintf(" AND (record_id ILIKE $%d OR metadata::text ILIKE $%d)", argN, argN))
		args = append(args, "%"+q+"%")
		argN++
	}

	if f.Type != "" {
		sb.WriteString(fmt.Sprintf(" AND event_type = $%d", argN))
		args = append(args, string(f.Type))
		argN++
	}
	if f.Kebele != "" {
		sb.WriteString(fmt.Sprintf(" AND kebele_id = $%d", argN))
		args = append(args, f.Kebele)
		argN++
	}
	if f.ApplicantID != "" {
		sb.WriteString(fmt.Sprintf(" AND applicant_id = $%d", argN))
		args = append(args, f.ApplicantID)
		argN++
	}

	sb.WriteString(" ORDER BY registration_date DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (r *RecordsRepo) UpdateStatus(ctx context.Context, upd records.StatusUpdate) error {
	// El WHERE sobre el status leído hace el update condicionado:
	// cero filas afectadas = registro inexistente o carrera perdida.
	res, err := r.db.ExecContext(ctx, `
		UPDATE vital_records
		SET status = $2,
		    certificate_number = COALESCE(NULLIF($3,''), certificate_number),
		    rejection_reason = COALESCE(NULLIF($4,''), rejection_reason)
		WHERE record_id = $1 AND status = $5
	`,
		upd.ID,
		string(upd.To),
		upd.CertificateNumber,
		upd.RejectionReason,
		string(upd.From),
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM vital_records WHERE record_id = $1)`, upd.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return records.ErrNotFound
		}
		return records.ErrConflict
	}
	return nil
}

func (r *RecordsRepo) ReplaceAll(ctx context.Context, recs []records.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vital_records`); err != nil {
		return err
	}

	for _, rec := range recs {
		metadata, err := json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("marshal record data: %w", err)
		}
		docs, err := marshalDocuments(rec.Documents)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO vital_records (
				record_id, event_type, kebele_id,
				status, registration_date, applicant_id,
				metadata, documents,
				certificate_number, rejection_reason
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),NULLIF($10,''))
		`,
			rec.ID,
			string(rec.Type),
			rec.Kebele,
			string(rec.Status),
			rec.RegistrationDate,
			rec.ApplicantID,
			metadata,
			docs,
			rec.CertificateNumber,
			rec.RejectionReason,
		)
		if err != nil {
			return mapUniqueViolation(err)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (records.Record, error) {
	var rec records.Record
	var typ, status string
	var metadata, docs []byte
	var cert, reason sql.NullString

	if err := row.Scan(
		&rec.ID,
		&typ,
		&rec.Kebele,
		&status,
		&rec.RegistrationDate,
		&rec.ApplicantID,
		&metadata,
		&docs,
		&cert,
		&reason,
	); err != nil {
		return records.Record{}, err
	}

	rec.Type = records.EventType(typ)
	rec.Status = records.Status(status)
	rec.CertificateNumber = cert.String
	rec.RejectionReason = reason.String

	data, err := details.Decode(typ, metadata)
	if err != nil {
		return records.Record{}, fmt.Errorf("decode record %s data: %w", rec.ID, err)
	}
	rec.Data = data

	var rows []documentRow
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &rows); err != nil {
			return records.Record{}, fmt.Errorf("decode record %s documents: %w", rec.ID, err)
		}
	}
	rec.Documents = make([]records.Document, 0, len(rows))
	for _, d := range rows {
		rec.Documents = append(rec.Documents, records.Document{
			Name:       d.Name,
			MediaType:  d.MediaType,
			StorageRef: d.StorageRef,
		})
	}

	return rec, nil
}

func marshalDocuments(docs []records.Document) ([]byte, error) {
	rows := make([]documentRow, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, documentRow{
			Name:       d.Name,
			MediaType:  d.MediaType,
			StorageRef: d.StorageRef,
		})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal documents: %w", err)
	}
	return b, nil
}

// mapUniqueViolation traduce el 23505 del índice de certificados a la
// condición retryable del workflow.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "certificate") {
			return records.ErrDuplicateCertificate
		}
	}
	return err
}
