package validation

import (
	"testing"

	"github.com/skillsenselab/medscribe/errors"
)

func TestValidatorChain(t *testing.T) {
	v := New().
		Required("language", "en-US").
		RequiredBytes("audio", []byte("data")).
		OneOf("provider", "deepgram", []string{"deepgram", "whisper"})

	if v.HasErrors() {
		t.Errorf("unexpected errors: %v", v.Errors())
	}
	if err := v.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidatorCollectsFailures(t *testing.T) {
	v := New().
		Required("audio", "").
		OneOf("provider", "nonsense", []string{"deepgram", "whisper"}).
		Min("timeout", -1, 0)

	if len(v.Errors()) != 3 {
		t.Fatalf("Errors() = %d, want 3", len(v.Errors()))
	}

	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("Validate() = nil, want AppError")
	}
	if appErr.Code != errors.ErrCodeValidation {
		t.Errorf("Code = %v, want validation", appErr.Code)
	}
	if appErr.Details["fields"] == nil {
		t.Error("Details missing fields")
	}
}

func TestValidatorBase64(t *testing.T) {
	if New().Base64("audio", "aGVsbG8=").HasErrors() {
		t.Error("valid base64 rejected")
	}
	if !New().Base64("audio", "!!not-base64!!").HasErrors() {
		t.Error("invalid base64 accepted")
	}
	if New().Base64("audio", "").HasErrors() {
		t.Error("empty value should pass; pair with Required when mandatory")
	}
}

func TestValidatorOptionalUUID(t *testing.T) {
	if New().OptionalUUID("request_id", "").HasErrors() {
		t.Error("empty optional UUID rejected")
	}
	if New().OptionalUUID("request_id", "2c3f4b1e-8a77-4f43-9d35-6d1f2cba2f01").HasErrors() {
		t.Error("valid UUID rejected")
	}
	if !New().OptionalUUID("request_id", "nope").HasErrors() {
		t.Error("invalid UUID accepted")
	}
}

type sampleRequest struct {
	Language string `json:"language" validate:"required"`
	Retries  int    `json:"retries" validate:"min=-1,max=5"`
}

func TestValidateStruct(t *testing.T) {
	if err := ValidateStruct(sampleRequest{Language: "en-US", Retries: 1}); err != nil {
		t.Errorf("ValidateStruct(valid) = %v", err)
	}

	err := ValidateStruct(sampleRequest{Retries: 99})
	if err == nil {
		t.Fatal("ValidateStruct(invalid) = nil")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("error is %T, want *AppError", err)
	}
	if appErr.Code != errors.ErrCodeValidation {
		t.Errorf("Code = %v, want validation", appErr.Code)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"RequestID", "request_i_d"},
		{"Language", "language"},
		{"MaxRetries", "max_retries"},
	}
	for _, tt := range tests {
		if got := toSnakeCase(tt.in); got != tt.want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
