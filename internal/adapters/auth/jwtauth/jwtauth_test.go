package jwtauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"civil-registry/internal/ports/auth"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	svc := New("test-secret", "civil-registry", time.Hour)

	in := auth.Claims{
		UserID:   "u-1",
		Username: "clerk",
		Role:     "DATA_CLERK",
		FullName: "Registration Clerk",
		Kebele:   "01",
	}

	token, err := svc.Issue(in)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	got, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != in {
		t.Fatalf("claims round trip mismatch: %+v vs %+v", got, in)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	svc := New("test-secret", "civil-registry", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Issue(auth.Claims{UserID: "u-1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	svc.now = time.Now
	_, err = svc.Verify(context.Background(), token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerify_WrongKeyAndGarbage(t *testing.T) {
	svc := New("test-secret", "civil-registry", time.Hour)
	other := New("other-secret", "civil-registry", time.Hour)

	token, err := other.Issue(auth.Claims{UserID: "u-1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong key: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Verify(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: expected ErrInvalidToken, got %v", err)
	}
}
