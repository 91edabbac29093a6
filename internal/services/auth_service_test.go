package services

import (
	"context"
	"strings"
	"testing"

	"tourbooking/internal/domain"
)

func TestRegisterRejectsNamesLongerThanColumns(t *testing.T) {
	s := AuthService{Secret: []byte("secret")}
	_, err := s.Register(context.Background(), RegisterRequest{
		Email:     "ama@example.com",
		Password:  "long-enough-password",
		FirstName: strings.Repeat("a", 51),
		LastName:  strings.Repeat("b", 50),
	})
	verr, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, bad := verr.Fields["first_name"]; !bad {
		t.Fatalf("expected first_name to fail, got %+v", verr.Fields)
	}
	if _, bad := verr.Fields["last_name"]; bad {
		t.Fatalf("50 characters should fit last_name, got %+v", verr.Fields)
	}
}
