package auditlog

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

type testRepo struct {
	entries   []Entry
	lastLimit int
}

func (r *testRepo) Append(ctx context.Context, e Entry) (Entry, error) {
	e.ID = strconv.Itoa(len(r.entries) + 1)
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *testRepo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	r.lastLimit = limit
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *testRepo) ReplaceAll(ctx context.Context, entries []Entry) error {
	r.entries = append([]Entry(nil), entries...)
	return nil
}

func TestService_Append_RequiresAction(t *testing.T) {
	svc := NewService(&testRepo{})

	_, err := svc.Append(context.Background(), Entry{Details: "something happened"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Append_DefaultsAndStoreID(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	stored, err := svc.Append(context.Background(), Entry{
		ID:     "client-supplied-id", // debe descartarse
		Action: ActionLogin,
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if stored.ID != "1" {
		t.Fatalf("store must assign the id, got %q", stored.ID)
	}
	if stored.UserID != "SYSTEM" || stored.UserName != "System" {
		t.Fatalf("expected SYSTEM defaults, got %s / %s", stored.UserID, stored.UserName)
	}
	if !stored.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp defaulted to now, got %v", stored.Timestamp)
	}
}

func TestService_Append_KeepsProvidedFields(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stored, err := svc.Append(context.Background(), Entry{
		Timestamp: ts,
		UserID:    "u-1",
		UserName:  "Citizen One",
		Action:    ActionCreateRecord,
		Details:   "Created BIRTH registration REG-AAA111111.",
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if stored.UserID != "u-1" || stored.UserName != "Citizen One" || !stored.Timestamp.Equal(ts) {
		t.Fatalf("provided fields must survive: %+v", stored)
	}
}

func TestService_Recent_ClampsLimit(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Recent(ctx, 0); err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if repo.lastLimit != RecentLimit {
		t.Fatalf("limit 0 must clamp to %d, got %d", RecentLimit, repo.lastLimit)
	}

	if _, err := svc.Recent(ctx, 1000); err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if repo.lastLimit != RecentLimit {
		t.Fatalf("limit above max must clamp to %d, got %d", RecentLimit, repo.lastLimit)
	}

	if _, err := svc.Recent(ctx, 10); err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if repo.lastLimit != 10 {
		t.Fatalf("limit within range must pass through, got %d", repo.lastLimit)
	}
}

func TestService_Record_BestEffort(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	// Action vacío: no inserta, pero tampoco explota.
	svc.Record(context.Background(), "u-1", "Citizen", "", "noop")
	if len(repo.entries) != 0 {
		t.Fatalf("invalid entry must not be stored")
	}

	svc.Record(context.Background(), "u-1", "Citizen", ActionLogin, "User citizen logged in.")
	if len(repo.entries) != 1 || repo.entries[0].Action != ActionLogin {
		t.Fatalf("expected one LOGIN entry, got %+v", repo.entries)
	}
}
