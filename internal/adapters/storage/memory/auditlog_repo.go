package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"civil-registry/internal/domain/auditlog"
)

type auditRepo struct {
	mu      sync.RWMutex
	entries []auditlog.Entry
	nextID  int64
}

func NewAuditLogRepo() auditlog.Repository {
	return &auditRepo{nextID: 1}
}

func (r *auditRepo) Append(ctx context.Context, e auditlog.Entry) (auditlog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = strconv.FormatInt(r.nextID, 10)
	r.nextID++

	r.entries = append(r.entries, e)
	return e, nil
}

func (r *auditRepo) Recent(ctx context.Context, limit int) ([]auditlog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auditlog.Entry, len(r.entries))
	copy(out, r.entries)

	// Más recientes primero; a igual timestamp decide el ID de inserción.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *auditRepo) ReplaceAll(ctx context.Context, entries []auditlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make([]auditlog.Entry, 0, len(entries))
	var maxID int64

	for _, e := range entries {
		if e.ID == "" {
			e.ID = strconv.FormatInt(r.nextID, 10)
			r.nextID++
		} else if n, err := strconv.ParseInt(e.ID, 10, 64); err == nil && n > maxID {
			maxID = n
		}
		r.entries = append(r.entries, e)
	}

	if maxID >= r.nextID {
		r.nextID = maxID + 1
	}
	return nil
}
