package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"tourbooking/internal/domain/models"
)

// RedisStore keeps drafts as JSON values with a sliding TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s RedisStore) Load(ctx context.Context, sessionID string) (models.BookingDraft, error) {
	raw, err := s.Client.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.BookingDraft{}, ErrNoDraft
	}
	if err != nil {
		return models.BookingDraft{}, fmt.Errorf("load draft: %w", err)
	}

	var d models.BookingDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		// an unreadable draft is as good as none
		_ = s.Client.Del(ctx, draftKey(sessionID)).Err()
		return models.BookingDraft{}, ErrNoDraft
	}
	return d, nil
}

func (s RedisStore) Save(ctx context.Context, sessionID string, draft models.BookingDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.Client.Set(ctx, draftKey(sessionID), raw, s.TTL).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Claim runs a WATCH/MULTI transaction on the draft key; a concurrent writer
// aborts it with redis.TxFailedErr, reported as ErrDraftMoved.
func (s RedisStore) Claim(ctx context.Context, sessionID string, from, to models.DraftStep) (models.BookingDraft, error) {
	key := draftKey(sessionID)
	var claimed models.BookingDraft

	err := s.Client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNoDraft
		}
		if err != nil {
			return fmt.Errorf("load draft: %w", err)
		}
		var d models.BookingDraft
		if err := json.Unmarshal(raw, &d); err != nil {
			return ErrNoDraft
		}
		if d.Step != from {
			return ErrDraftMoved
		}

		moved := d
		moved.Step = to
		next, err := json.Marshal(moved)
		if err != nil {
			return fmt.Errorf("encode draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.TTL)
			return nil
		})
		if err != nil {
			return err
		}
		claimed = d
		return nil
	}, key)

	switch {
	case err == nil:
		return claimed, nil
	case errors.Is(err, redis.TxFailedErr):
		return models.BookingDraft{}, ErrDraftMoved
	case errors.Is(err, ErrNoDraft), errors.Is(err, ErrDraftMoved):
		return models.BookingDraft{}, err
	default:
		return models.BookingDraft{}, fmt.Errorf("claim draft: %w", err)
	}
}

func (s RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.Client.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
