package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorString(t *testing.T) {
	err := New(ErrCodeTimeout, "deadline exceeded", http.StatusGatewayTimeout)
	want := "TIMEOUT: deadline exceeded"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestAppErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ExternalServiceError("deepgram", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Details["service"] != "deepgram" {
		t.Errorf("expected service detail, got %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	inner := RateLimited()
	wrapped := fmt.Errorf("attempt failed: %w", inner)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Code != ErrCodeRateLimited {
		t.Errorf("expected RATE_LIMITED, got %s", appErr.Code)
	}

	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Error("expected plain error not to convert")
	}
}

func TestRetryableCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeRateLimited, true},
		{ErrCodeTimeout, true},
		{ErrCodeServiceUnavailable, true},
		{ErrCodeInvalidInput, false},
		{ErrCodeUnauthorized, false},
		{ErrCodeInternal, false},
	}

	for _, tt := range tests {
		if got := IsRetryableCode(tt.code); got != tt.want {
			t.Errorf("IsRetryableCode(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestWithDetail(t *testing.T) {
	err := Timeout("transcribe").WithDetail("provider", "whisper")
	if err.Details["provider"] != "whisper" {
		t.Errorf("expected provider detail, got %v", err.Details)
	}
	if err.Details["operation"] != "transcribe" {
		t.Errorf("expected operation detail preserved, got %v", err.Details)
	}
}
