package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name:     "without cause",
			err:      Conflict("slot already booked"),
			contains: []string{CodeConflict, "slot already booked"},
		},
		{
			name:     "with cause",
			err:      Internal("failed to persist booking", errors.New("connection reset")),
			contains: []string{CodeInternal, "failed to persist booking", "connection reset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, want it to contain %q", msg, want)
				}
			}
		})
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("end must be after start"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("overlapping hold"), CodeConflict, http.StatusConflict},
		{"invalid state", InvalidState("cannot cancel a completed booking"), CodeInvalidState, http.StatusConflict},
		{"promo invalid", PromoInvalid("code is expired"), CodePromoInvalid, http.StatusUnprocessableEntity},
		{"validation", Validation("bad payload", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"forbidden", Forbidden("not the booking owner"), CodeForbidden, http.StatusForbidden},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestPromoInvalid_ReasonInDetails(t *testing.T) {
	err := PromoInvalid("usage limit reached")
	reason, ok := err.Details["reason"]
	if !ok {
		t.Fatal("expected reason in details")
	}
	if reason != "usage limit reached" {
		t.Errorf("reason = %v, want %q", reason, "usage limit reached")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Internal("wrapper", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("taken")
	if got := AsAppError(appErr); got != appErr {
		t.Error("AsAppError should return the same *AppError unchanged")
	}

	plain := errors.New("plain")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("wrapped plain error code = %q, want %q", got.Code, CodeInternal)
	}
	if !errors.Is(got, plain) {
		t.Error("wrapped plain error should unwrap to the original")
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(Conflict("x"), CodeConflict) {
		t.Error("IsCode should match conflict errors")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Error("IsCode should not match plain errors")
	}
}

func TestWithDetails(t *testing.T) {
	err := InvalidInput("bad schedule").WithDetails(map[string]any{"field": "end_time"})
	if err.Details["field"] != "end_time" {
		t.Errorf("Details[field] = %v, want end_time", err.Details["field"])
	}
}
