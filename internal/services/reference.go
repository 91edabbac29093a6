package services

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const (
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	ReferenceLength   = 12
)

// NewReference returns a random booking reference over [A-Z0-9].
func NewReference() string {
	out := make([]byte, 0, ReferenceLength)
	buf := make([]byte, ReferenceLength*2)
	// 252 is the largest multiple of 36 below 256; bytes above it are rejected.
	for len(out) < ReferenceLength {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(out) == ReferenceLength {
				break
			}
		}
	}
	return string(out)
}

// NewTransactionID is used for successful payments that did not carry a usable reference.
func NewTransactionID() string {
	return "TXN-" + uuid.NewString()
}

// IsReference reports whether s looks like a booking reference.
func IsReference(s string) bool {
	if len(s) != ReferenceLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
