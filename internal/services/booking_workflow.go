package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/session"
	"tourbooking/internal/utils"

	"go.uber.org/zap"
)

const (
	maxFullNameLen      = 100
	maxTransactionIDLen = 100
	notifyTimeout       = 10 * time.Second
)

// Notifier delivers booking emails. Failures never affect a committed booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, n models.BookingNotice) error
	TourReminder(ctx context.Context, n models.BookingNotice) error
}

// BookingWorkflow drives start -> participants -> payment -> confirmation.
// Every step loads the session draft and checks its step before accepting input.
type BookingWorkflow struct {
	Capacity            CapacityService
	Ledger              BookingLedger
	Drafts              session.DraftStore
	Notifier            Notifier
	Logger              *zap.Logger
	FailedPaymentStatus models.BookingStatus
	Now                 func() time.Time
	RequestID           string
}

type StartRequest struct {
	ScheduleID          int64  `json:"schedule_id" validate:"gt=0"`
	Participants        int    `json:"participants" validate:"gte=0,lte=100"`
	SpecialRequirements string `json:"special_requirements" validate:"max=2000"`
}

type StartView struct {
	Schedule models.TourSchedule `json:"schedule"`
	Capacity models.Capacity     `json:"capacity"`
	// MaxParticipants is the most additional participants that still fit.
	MaxParticipants int                  `json:"max_participants"`
	Draft           *models.BookingDraft `json:"draft,omitempty"`
}

type ParticipantsView struct {
	Draft    models.BookingDraft       `json:"draft"`
	Schedule models.TourSchedule       `json:"schedule"`
	Indexes  []int                     `json:"indexes"`
	Entries  []models.ParticipantInput `json:"entries"`
}

type CountUpdate struct {
	Count           int              `json:"count"`
	Step            models.DraftStep `json:"step"`
	TotalPriceCents int64            `json:"total_price_cents"`
	TotalPrice      string           `json:"total_price"`
	Remaining       int              `json:"remaining_slots"`
}

type PaymentView struct {
	Draft           models.BookingDraft `json:"draft"`
	Schedule        models.TourSchedule `json:"schedule"`
	Capacity        models.Capacity     `json:"capacity"`
	TotalPriceCents int64               `json:"total_price_cents"`
	TotalPrice      string              `json:"total_price"`
}

// BookingView is a persisted booking with everything a confirmation page shows.
type BookingView struct {
	Booking         models.Booking              `json:"booking"`
	Participants    []models.BookingParticipant `json:"participants"`
	Payment         *models.Payment             `json:"payment"`
	TotalPriceCents int64                       `json:"total_price_cents"`
	TotalPrice      string                      `json:"total_price"`
}

func (w BookingWorkflow) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w BookingWorkflow) log() *zap.Logger {
	return utils.OrNop(w.Logger)
}

// ShowStart is the read-only start page of a schedule.
func (w BookingWorkflow) ShowStart(ctx context.Context, sessionID string, scheduleID int64) (StartView, error) {
	schedule, capacity, err := w.Capacity.ForSchedule(ctx, scheduleID)
	if err != nil {
		return StartView{}, err
	}
	view := StartView{
		Schedule:        schedule,
		Capacity:        capacity,
		MaxParticipants: maxAdditional(capacity),
	}
	if draft, err := w.Drafts.Load(ctx, sessionID); err == nil && draft.ScheduleID == scheduleID {
		view.Draft = &draft
	}
	return view, nil
}

// Start validates the requested party size against capacity and opens a new draft.
// A rejected request leaves any existing draft untouched.
func (w BookingWorkflow) Start(ctx context.Context, sessionID string, req StartRequest) (models.BookingDraft, error) {
	req.SpecialRequirements = strings.TrimSpace(req.SpecialRequirements)
	if err := validateStruct(req); err != nil {
		return models.BookingDraft{}, err
	}
	_, capacity, err := w.Capacity.ForSchedule(ctx, req.ScheduleID)
	if err != nil {
		return models.BookingDraft{}, err
	}
	if !capacity.Allows(req.Participants) {
		return models.BookingDraft{}, domain.ValidationError{Field: "participants", Msg: capacity.SpotsMessage()}
	}

	draft := models.BookingDraft{
		Step:                models.NextStepAfterCount(req.Participants),
		ScheduleID:          req.ScheduleID,
		Participants:        req.Participants,
		SpecialRequirements: req.SpecialRequirements,
	}
	if err := w.Drafts.Save(ctx, sessionID, draft); err != nil {
		return models.BookingDraft{}, domain.InternalError{Msg: "save draft", Err: err}
	}
	utils.LogEvent(w.Logger, w.RequestID, "booking", "start", "booking draft started",
		zap.Int64("schedule_id", req.ScheduleID),
		zap.Int("participants", req.Participants),
	)
	return draft, nil
}

func (w BookingWorkflow) ShowParticipants(ctx context.Context, sessionID string) (ParticipantsView, error) {
	draft, err := w.draftAt(ctx, sessionID, "participants", models.StepParticipants)
	if err != nil {
		return ParticipantsView{}, err
	}
	schedule, err := w.Capacity.Catalog.GetSchedule(ctx, draft.ScheduleID)
	if err != nil {
		return ParticipantsView{}, wrapInternal(err)
	}
	return ParticipantsView{
		Draft:    draft,
		Schedule: schedule,
		Indexes:  participantIndexes(draft.Participants),
		Entries:  padParticipants(draft.ParticipantDetails, draft.Participants),
	}, nil
}

// SubmitParticipants stores exactly Participants entries; indexes missing from
// inputs count as empty. On failure the draft is unchanged.
func (w BookingWorkflow) SubmitParticipants(ctx context.Context, sessionID string, inputs []models.ParticipantInput) (models.BookingDraft, error) {
	draft, err := w.draftAt(ctx, sessionID, "participants", models.StepParticipants)
	if err != nil {
		return models.BookingDraft{}, err
	}

	entries := padParticipants(inputs, draft.Participants)
	fields := map[string]string{}
	for i := range entries {
		entries[i].FullName = strings.TrimSpace(entries[i].FullName)
		entries[i].Notes = strings.TrimSpace(entries[i].Notes)
		key := fmt.Sprintf("participant_%d", i+1)
		switch {
		case entries[i].FullName == "":
			fields[key+"_full_name"] = "Full name is required."
		case len([]rune(entries[i].FullName)) > maxFullNameLen:
			fields[key+"_full_name"] = fmt.Sprintf("Full name must be at most %d characters.", maxFullNameLen)
		}
		if entries[i].Age != nil && *entries[i].Age < 0 {
			fields[key+"_age"] = "Age must be zero or greater."
		}
	}
	if len(fields) > 0 {
		return models.BookingDraft{}, domain.ValidationError{Msg: "Please correct the participant details.", Fields: fields}
	}

	draft.ParticipantDetails = entries
	draft.Step = models.StepPayment
	if err := w.Drafts.Save(ctx, sessionID, draft); err != nil {
		return models.BookingDraft{}, domain.InternalError{Msg: "save draft", Err: err}
	}
	return draft, nil
}

// UpdateParticipantCount changes the party size of an open draft without persisting a booking.
func (w BookingWorkflow) UpdateParticipantCount(ctx context.Context, sessionID string, count int) (CountUpdate, error) {
	draft, err := w.draftAt(ctx, sessionID, "participant_count", models.StepParticipants, models.StepPayment)
	if err != nil {
		return CountUpdate{}, err
	}
	if count < 0 {
		return CountUpdate{}, domain.ValidationError{Field: "count", Msg: "Ensure this value is greater than or equal to 0."}
	}
	schedule, capacity, err := w.Capacity.ForSchedule(ctx, draft.ScheduleID)
	if err != nil {
		return CountUpdate{}, err
	}
	if !capacity.Allows(count) {
		return CountUpdate{}, domain.ValidationError{Field: "count", Msg: capacity.SpotsMessage()}
	}

	draft.Participants = count
	if len(draft.ParticipantDetails) > count {
		draft.ParticipantDetails = draft.ParticipantDetails[:count]
	}
	if count > 0 && len(draft.ParticipantDetails) < count {
		draft.Step = models.StepParticipants
	} else {
		draft.Step = models.StepPayment
	}
	if err := w.Drafts.Save(ctx, sessionID, draft); err != nil {
		return CountUpdate{}, domain.InternalError{Msg: "save draft", Err: err}
	}

	total := models.TotalPrice(count, schedule.Tour.PriceCents)
	return CountUpdate{
		Count:           count,
		Step:            draft.Step,
		TotalPriceCents: total,
		TotalPrice:      utils.FormatMoney(total),
		Remaining:       capacity.Available(),
	}, nil
}

func (w BookingWorkflow) ShowPayment(ctx context.Context, sessionID string) (PaymentView, error) {
	draft, err := w.draftAt(ctx, sessionID, "payment", models.StepPayment)
	if err != nil {
		return PaymentView{}, err
	}
	schedule, capacity, err := w.Capacity.ForSchedule(ctx, draft.ScheduleID)
	if err != nil {
		return PaymentView{}, err
	}
	total := models.TotalPrice(draft.Participants, schedule.Tour.PriceCents)
	return PaymentView{
		Draft:           draft,
		Schedule:        schedule,
		Capacity:        capacity,
		TotalPriceCents: total,
		TotalPrice:      utils.FormatMoney(total),
	}, nil
}

// SubmitPayment commits the draft as a booking with its participants and payment,
// then clears the draft and sends a confirmation email. The draft is claimed
// before the commit so one draft yields at most one booking; a failed commit
// puts it back at the payment step.
func (w BookingWorkflow) SubmitPayment(ctx context.Context, rc domain.RequestContext, signal models.PaymentSignal) (CommitResult, error) {
	if signal.Reference != nil && len([]rune(strings.TrimSpace(*signal.Reference))) > maxTransactionIDLen {
		return CommitResult{}, domain.ValidationError{
			Field: "reference",
			Msg:   fmt.Sprintf("Payment reference must be at most %d characters.", maxTransactionIDLen),
		}
	}

	draft, err := w.Drafts.Claim(ctx, rc.SessionID, models.StepPayment, models.StepConfirmed)
	switch {
	case errors.Is(err, session.ErrNoDraft), errors.Is(err, session.ErrDraftMoved):
		return CommitResult{}, domain.StaleSessionError{Step: "payment"}
	case err != nil:
		return CommitResult{}, domain.InternalError{Msg: "claim draft", Err: err}
	}

	res, err := w.Ledger.Commit(ctx, CommitRequest{
		UserID:              int64(rc.UserID),
		ScheduleID:          draft.ScheduleID,
		Participants:        draft.ParticipantDetails,
		SpecialRequirements: draft.SpecialRequirements,
		PaymentSucceeded:    signal.Success,
		FailedStatus:        w.FailedPaymentStatus,
		TransactionID:       signal.Reference,
		Now:                 w.now(),
	})
	if err != nil {
		if rerr := w.Drafts.Save(context.WithoutCancel(ctx), rc.SessionID, draft); rerr != nil {
			w.log().Warn("restore booking draft failed", zap.String("request_id", w.RequestID), zap.Error(rerr))
		}
		return CommitResult{}, err
	}

	if err := w.Drafts.Clear(ctx, rc.SessionID); err != nil {
		w.log().Warn("clear booking draft failed", zap.String("request_id", w.RequestID), zap.Error(err))
	}
	utils.LogEvent(w.Logger, w.RequestID, "booking", "commit", "booking committed",
		zap.String("reference", res.Booking.Reference),
		zap.String("status", string(res.Booking.Status)),
		zap.String("payment_status", string(res.Payment.Status)),
		zap.Int("participants", len(res.Participants)),
	)

	w.notifyConfirmed(ctx, rc, res)
	return res, nil
}

// Confirmation shows a committed booking of the caller and drops any leftover draft.
func (w BookingWorkflow) Confirmation(ctx context.Context, rc domain.RequestContext, reference string) (BookingView, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if !IsReference(reference) {
		return BookingView{}, domain.NotFoundError{Resource: "booking"}
	}
	booking, err := w.Ledger.FindByReference(ctx, int64(rc.UserID), reference)
	if err != nil {
		return BookingView{}, wrapInternal(err)
	}
	if err := w.Drafts.Clear(ctx, rc.SessionID); err != nil {
		w.log().Warn("clear booking draft failed", zap.String("request_id", w.RequestID), zap.Error(err))
	}
	return w.view(ctx, booking)
}

// Details shows one of the caller's bookings.
func (w BookingWorkflow) Details(ctx context.Context, userID domain.ID, bookingID int64) (BookingView, error) {
	if bookingID <= 0 {
		return BookingView{}, domain.NotFoundError{Resource: "booking"}
	}
	booking, err := w.Ledger.FindForUser(ctx, int64(userID), bookingID)
	if err != nil {
		return BookingView{}, wrapInternal(err)
	}
	return w.view(ctx, booking)
}

func (w BookingWorkflow) view(ctx context.Context, booking models.Booking) (BookingView, error) {
	participants, err := w.Ledger.Participants(ctx, booking.ID)
	if err != nil {
		return BookingView{}, wrapInternal(err)
	}
	booking.ParticipantCount = len(participants)

	view := BookingView{
		Booking:         booking,
		Participants:    participants,
		TotalPriceCents: booking.TotalPrice(),
		TotalPrice:      utils.FormatMoney(booking.TotalPrice()),
	}
	payment, err := w.Ledger.LatestPayment(ctx, booking.ID)
	switch {
	case err == nil:
		view.Payment = &payment
	case !domain.IsNotFound(err):
		return BookingView{}, wrapInternal(err)
	}
	return view, nil
}

func (w BookingWorkflow) draftAt(ctx context.Context, sessionID, step string, allowed ...models.DraftStep) (models.BookingDraft, error) {
	draft, err := w.Drafts.Load(ctx, sessionID)
	if errors.Is(err, session.ErrNoDraft) {
		return models.BookingDraft{}, domain.StaleSessionError{Step: step}
	}
	if err != nil {
		return models.BookingDraft{}, domain.InternalError{Msg: "load draft", Err: err}
	}
	if !draft.Is(allowed...) {
		return models.BookingDraft{}, domain.StaleSessionError{Step: step}
	}
	return draft, nil
}

func (w BookingWorkflow) notifyConfirmed(ctx context.Context, rc domain.RequestContext, res CommitResult) {
	if w.Notifier == nil || strings.TrimSpace(rc.Email) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	notice := models.NoticeFor(res.Booking, rc.Email, "")
	notice.PaymentStatus = res.Payment.Status
	if err := w.Notifier.BookingConfirmed(ctx, notice); err != nil {
		w.log().Warn("booking notification failed",
			zap.String("request_id", w.RequestID),
			zap.String("reference", res.Booking.Reference),
			zap.Error(domain.ExternalServiceError{Service: "mail", Err: err}),
		)
	}
}

func maxAdditional(c models.Capacity) int {
	if c.Remaining <= 1 {
		return 0
	}
	return c.Remaining - 1
}

func participantIndexes(count int) []int {
	out := make([]int, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, i)
	}
	return out
}

func padParticipants(in []models.ParticipantInput, count int) []models.ParticipantInput {
	out := make([]models.ParticipantInput, count)
	copy(out, in)
	return out
}
