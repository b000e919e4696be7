package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

func TestValidateDate(t *testing.T) {
	tests := map[string]bool{
		"2025-03-10": true,
		"2024-02-29": true,
		"2025-02-29": false,
		"10.03.2025": false,
		"":           false,
	}

	for in, want := range tests {
		if got := ValidateDate(in); got != want {
			t.Errorf("ValidateDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateClock(t *testing.T) {
	tests := map[string]bool{
		"09:30": true,
		"00:00": true,
		"23:59": true,
		"24:00": false,
		"9:30":  false,
		"09:60": false,
		"9am":   false,
	}

	for in, want := range tests {
		if got := ValidateClock(in); got != want {
			t.Errorf("ValidateClock(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRegister_BindingTags(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	type request struct {
		Date string  `binding:"required,isodate"`
		Time *string `binding:"omitempty,clock"`
	}

	good := "10:00"
	if err := binding.Validator.ValidateStruct(request{Date: "2025-03-10", Time: &good}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if err := binding.Validator.ValidateStruct(request{Date: "2025-03-10"}); err != nil {
		t.Fatalf("omitted time rejected: %v", err)
	}

	bad := "10:15:00"
	if err := binding.Validator.ValidateStruct(request{Date: "2025-03-10", Time: &bad}); err == nil {
		t.Fatal("bad time accepted")
	}
	if err := binding.Validator.ValidateStruct(request{Date: "03/10/2025"}); err == nil {
		t.Fatal("bad date accepted")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  отпуск <b>по болезни</b>; "); got != "отпуск bпо болезни/b" {
		t.Fatalf("SanitizeString = %q", got)
	}
}
