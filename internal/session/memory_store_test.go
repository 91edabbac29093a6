package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourbooking/internal/domain/models"
)

func TestMemoryStoreRoundTripAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	if _, err := s.Load(ctx, "sid"); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft on empty store, got %v", err)
	}

	draft := models.BookingDraft{
		Step:               models.StepPayment,
		ScheduleID:         7,
		Participants:       1,
		ParticipantDetails: []models.ParticipantInput{{FullName: "Ama"}},
	}
	if err := s.Save(ctx, "sid", draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ScheduleID != 7 || got.Step != models.StepPayment || len(got.ParticipantDetails) != 1 {
		t.Fatalf("unexpected draft: %+v", got)
	}

	got.ParticipantDetails[0].FullName = "changed"
	again, _ := s.Load(ctx, "sid")
	if again.ParticipantDetails[0].FullName != "Ama" {
		t.Fatalf("stored draft was mutated through a loaded copy")
	}

	if _, err := s.Load(ctx, "other"); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("drafts must be scoped per session, got %v", err)
	}

	if err := s.Clear(ctx, "sid"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Load(ctx, "sid"); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft after clear, got %v", err)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.Now = func() time.Time { return now }

	if err := s.Save(ctx, "sid", models.BookingDraft{Step: models.StepPayment}); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := s.Load(ctx, "sid"); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected expired draft to be gone, got %v", err)
	}
}

func TestMemoryStoreClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	if _, err := s.Claim(ctx, "sid", models.StepPayment, models.StepConfirmed); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
	if err := s.Save(ctx, "sid", models.BookingDraft{Step: models.StepPayment, ScheduleID: 7}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Claim(ctx, "sid", models.StepPayment, models.StepConfirmed)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got.Step != models.StepPayment || got.ScheduleID != 7 {
		t.Fatalf("claim should return the draft as it was, got %+v", got)
	}
	if _, err := s.Claim(ctx, "sid", models.StepPayment, models.StepConfirmed); !errors.Is(err, ErrDraftMoved) {
		t.Fatalf("second claim: expected ErrDraftMoved, got %v", err)
	}

	stored, err := s.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Step != models.StepConfirmed {
		t.Fatalf("expected stored draft at confirmed, got %s", stored.Step)
	}
}
