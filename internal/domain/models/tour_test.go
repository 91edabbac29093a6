package models

import "testing"

func TestCapacityFromConfirmedBookings(t *testing.T) {
	// One confirmed booking with two participants occupies three slots.
	c := NewCapacity(4, 3)
	if c.Remaining != 1 || c.FullyBooked {
		t.Fatalf("unexpected capacity %+v", c)
	}
	if c.Allows(1) {
		t.Fatalf("booker plus one participant must not fit into one slot")
	}
	if !c.Allows(0) {
		t.Fatalf("a lone booker should fit")
	}
	if c.SpotsMessage() != "Only 1 total spots available." {
		t.Fatalf("unexpected message %q", c.SpotsMessage())
	}

	if empty := NewCapacity(4, 0); empty.Remaining != 4 {
		t.Fatalf("no bookings should leave the full ceiling, got %d", empty.Remaining)
	}

	over := NewCapacity(4, 6)
	if !over.FullyBooked || over.Available() != 0 || over.SpotsMessage() != "Only 0 total spots available." {
		t.Fatalf("overbooked schedule should report full, got %+v", over)
	}
}

func TestTourTextLists(t *testing.T) {
	tour := Tour{Highlights: "Castle\r\n\n  River  \n", WhatToBring: ""}
	got := tour.HighlightsList()
	if len(got) != 2 || got[0] != "Castle" || got[1] != "River" {
		t.Fatalf("unexpected highlights %q", got)
	}
	if len(tour.WhatToBringList()) != 0 {
		t.Fatalf("empty text should give no items")
	}
}

func TestNextStepAfterCount(t *testing.T) {
	if NextStepAfterCount(0) != StepPayment || NextStepAfterCount(2) != StepParticipants {
		t.Fatalf("unexpected step routing")
	}
}
