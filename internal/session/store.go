// Package session keeps booking drafts per authenticated session.
package session

import (
	"context"
	"errors"

	"tourbooking/internal/domain/models"
)

var (
	// ErrNoDraft is returned by Load and Claim when the session holds no draft.
	ErrNoDraft = errors.New("session: no booking draft")
	// ErrDraftMoved is returned by Claim when the draft is not at the expected step.
	ErrDraftMoved = errors.New("session: booking draft is at another step")
)

// DraftStore holds at most one draft per session id.
type DraftStore interface {
	Load(ctx context.Context, sessionID string) (models.BookingDraft, error)
	Save(ctx context.Context, sessionID string, draft models.BookingDraft) error
	Clear(ctx context.Context, sessionID string) error
	// Claim atomically moves the draft from step from to step to and returns
	// it as it was before the move. Only one caller can claim a given step.
	Claim(ctx context.Context, sessionID string, from, to models.DraftStep) (models.BookingDraft, error)
}

func draftKey(sessionID string) string {
	return "booking:draft:" + sessionID
}
