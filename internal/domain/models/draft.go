package models

// DraftStep tags where a session draft currently sits in the booking flow.
type DraftStep string

const (
	StepParticipants DraftStep = "participants"
	StepPayment      DraftStep = "payment"
	// StepConfirmed marks a draft claimed by a payment commit in flight.
	StepConfirmed    DraftStep = "confirmed"
)

// BookingDraft is the per-session staging record of a booking in progress.
type BookingDraft struct {
	Step                DraftStep          `json:"step"`
	ScheduleID          int64              `json:"schedule_id"`
	Participants        int                `json:"participants"`
	SpecialRequirements string             `json:"special_requirements"`
	ParticipantDetails  []ParticipantInput `json:"participant_details,omitempty"`
}

// NextStepAfterCount is where the flow goes once the participant count is known.
func NextStepAfterCount(count int) DraftStep {
	if count > 0 {
		return StepParticipants
	}
	return StepPayment
}

// Is reports whether the draft sits at any of the given steps.
func (d BookingDraft) Is(steps ...DraftStep) bool {
	for _, s := range steps {
		if d.Step == s {
			return true
		}
	}
	return false
}
