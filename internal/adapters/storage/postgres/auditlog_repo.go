package postgres

import (
	"context"
	"database/sql"
	"strconv"

	"civil-registry/internal/domain/auditlog"
)

type AuditLogRepo struct {
	db *sql.DB
}

func NewAuditLogRepo(db *sql.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

func (r *AuditLogRepo) Append(ctx context.Context, e auditlog.Entry) (auditlog.Entry, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO audit_logs (timestamp, user_id, user_name, action, details)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING log_id
	`,
		e.Timestamp,
		e.UserID,
		e.UserName,
		e.Action,
		e.Details,
	).Scan(&id)
	if err != nil {
		return auditlog.Entry{}, err
	}

	e.ID = strconv.FormatInt(id, 10)
	return e, nil
}

func (r *AuditLogRepo) Recent(ctx context.Context, limit int) ([]auditlog.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT log_id, timestamp, user_id, user_name, action, details
		FROM audit_logs
		ORDER BY timestamp DESC, log_id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]auditlog.Entry, 0, limit)
	for rows.Next() {
		var e auditlog.Entry
		var id int64

		if err := rows.Scan(&id, &e.Timestamp, &e.UserID, &e.UserName, &e.Action, &e.Details); err != nil {
			return nil, err
		}

		e.ID = strconv.FormatInt(id, 10)
		out = append(out, e)
	}

	return out, rows.Err()
}

// ReplaceAll reemplaza el log completo dentro de una transacción.
// Solo lo usa la restauración de backups.
func (r *AuditLogRepo) ReplaceAll(ctx context.Context, entries []auditlog.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_logs`); err != nil {
		return err
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO audit_logs (timestamp, user_id, user_name, action, details)
			VALUES ($1,$2,$3,$4,$5)
		`, e.Timestamp, e.UserID, e.UserName, e.Action, e.Details)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
