package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	"civil-registry/internal/adapters/storage/memory"
	"civil-registry/internal/domain/auditlog"
	"civil-registry/internal/domain/records"
	"civil-registry/internal/domain/records/details"
	"civil-registry/internal/domain/users"
)

func newTestStack(t *testing.T) (*Service, *records.Service, *auditlog.Service) {
	t.Helper()

	logsSvc := auditlog.NewService(memory.NewAuditLogRepo())
	recordsSvc := records.NewService(memory.NewRecordsRepo(), logsSvc, nil)
	return NewService(recordsSvc, logsSvc), recordsSvc, logsSvc
}

func TestExportImport_RoundTrip(t *testing.T) {
	svc, recordsSvc, _ := newTestStack(t)
	ctx := context.Background()

	citizen := records.Actor{ID: "u-1", Name: "Citizen One", Role: users.RoleCitizen}
	admin := records.Actor{ID: "a-1", Name: "Admin", Role: users.RoleAdmin}

	created, err := recordsSvc.Create(ctx, citizen, records.CreateInput{
		Type:   records.EventTypeBirth,
		Kebele: "01",
		Data:   &details.Birth{FullName: "Abebe Kebede", DateOfBirth: "2024-05-01"},
		Documents: []records.Document{
			{Name: "birth-notification.pdf", MediaType: "application/pdf", StorageRef: "uploads/a"},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	approved, err := recordsSvc.Transition(ctx, admin, created.ID, records.StatusApproved, "")
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}

	exported, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if exported.Version != Version {
		t.Fatalf("expected version %s, got %s", Version, exported.Version)
	}
	if len(exported.Records) != 1 || len(exported.Logs) == 0 {
		t.Fatalf("expected 1 record and some logs, got %d / %d", len(exported.Records), len(exported.Logs))
	}

	// Restaurar sobre un stack limpio reproduce el estado.
	fresh, freshRecords, freshLogs := newTestStack(t)
	if err := fresh.Import(ctx, exported); err != nil {
		t.Fatalf("Import error: %v", err)
	}

	got, err := freshRecords.Search(ctx, records.Filter{})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 restored record, got %d", len(got))
	}
	if got[0].ID != approved.ID || got[0].Status != records.StatusApproved {
		t.Fatalf("restored record mismatch: %+v", got[0])
	}
	if got[0].CertificateNumber != approved.CertificateNumber {
		t.Fatalf("certificate must survive the round trip")
	}
	if got[0].Data.Holder() != "Abebe Kebede" {
		t.Fatalf("event data must survive the round trip, got %q", got[0].Data.Holder())
	}

	logs, err := freshLogs.Recent(ctx, auditlog.RecentLimit)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(logs) != len(exported.Logs) {
		t.Fatalf("expected %d restored logs, got %d", len(exported.Logs), len(logs))
	}
}

func TestImport_RejectsInvalidPayloadWithoutPartialWrite(t *testing.T) {
	svc, recordsSvc, _ := newTestStack(t)
	ctx := context.Background()

	citizen := records.Actor{ID: "u-1", Role: users.RoleCitizen}
	if _, err := recordsSvc.Create(ctx, citizen, records.CreateInput{
		Type:   records.EventTypeDeath,
		Kebele: "02",
		Data:   &details.Death{FullName: "Existing Person", DateOfDeath: "2025-01-01"},
		Documents: []records.Document{
			{Name: "doc.pdf", MediaType: "application/pdf", StorageRef: "uploads/b"},
		},
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	bad := Payload{
		Version:    Version,
		ExportDate: time.Now(),
		Records: []recordPayload{
			{ID: "REG-BAD000000", Type: "UNKNOWN", Status: "PENDING", Data: []byte(`{}`)},
		},
	}
	if err := svc.Import(ctx, bad); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}

	// El store no se tocó.
	got, err := recordsSvc.Search(ctx, records.Filter{})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 || got[0].Data.Holder() != "Existing Person" {
		t.Fatalf("failed import must not mutate the store: %+v", got)
	}
}

func TestImport_RequiresVersion(t *testing.T) {
	svc, _, _ := newTestStack(t)

	if err := svc.Import(context.Background(), Payload{}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
