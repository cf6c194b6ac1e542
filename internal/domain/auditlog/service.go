package auditlog

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// RecentLimit es el máximo de entradas que devuelve Recent,
// igual que el LIMIT 100 del sistema original.
const RecentLimit = 100

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Append valida y persiste una entrada. Action es obligatorio;
// userId/userName caen a SYSTEM/System si vienen vacíos.
func (s *Service) Append(ctx context.Context, e Entry) (Entry, error) {
	if strings.TrimSpace(e.Action) == "" {
		return Entry{}, ErrInvalidInput
	}

	if strings.TrimSpace(e.UserID) == "" {
		e.UserID = "SYSTEM"
	}
	if strings.TrimSpace(e.UserName) == "" {
		e.UserName = "System"
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	// El ID del cliente se descarta: lo asigna el store.
	e.ID = ""

	return s.repo.Append(ctx, e)
}

// Record es el helper que usan los otros módulos para emitir una entrada
// tras confirmar su escritura principal. Best-effort: el fallo del log
// no revierte la operación que lo originó.
func (s *Service) Record(ctx context.Context, userID, userName, action, details string) {
	_, _ = s.Append(ctx, Entry{
		UserID:   userID,
		UserName: userName,
		Action:   action,
		Details:  details,
	})
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	return s.repo.Recent(ctx, limit)
}

func (s *Service) ReplaceAll(ctx context.Context, entries []Entry) error {
	return s.repo.ReplaceAll(ctx, entries)
}
