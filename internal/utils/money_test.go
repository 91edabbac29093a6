package utils

import "testing"

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{
		0:         "0.00",
		5:         "0.05",
		7500:      "75.00",
		125050:    "1,250.50",
		123456789: "1,234,567.89",
		-2500:     "-25.00",
	}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Fatalf("FormatMoney(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := SafeFilenamePart("  "); got != "NA" {
		t.Fatalf("blank should become NA, got %q", got)
	}
	if got := SafeFilenamePart("Old Town/Walk"); got != "Old_Town_Walk" {
		t.Fatalf("unexpected %q", got)
	}
}
