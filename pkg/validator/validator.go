package validator

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var clockRegex = regexp.MustCompile(`^[0-2][0-9]:[0-5][0-9]$`)

var registerOnce sync.Once

// Register adds the "isodate" and "clock" tags to gin's binding validator.
// Safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*playground.Validate)
		if !ok {
			err = fmt.Errorf("неожиданный движок валидации %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("isodate", stringRule(ValidateDate)); err != nil {
			return
		}
		err = v.RegisterValidation("clock", stringRule(ValidateClock))
	})
	return err
}

func stringRule(check func(string) bool) playground.Func {
	return func(fl playground.FieldLevel) bool {
		return check(fl.Field().String())
	}
}

// ValidateDate accepts YYYY-MM-DD calendar dates.
func ValidateDate(s string) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(s))
	return err == nil
}

// ValidateClock accepts HH:MM on a 24-hour clock.
func ValidateClock(s string) bool {
	s = strings.TrimSpace(s)
	if !clockRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(clockLayout, s)
	return err == nil
}

func SanitizeString(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '<' || r == '>' || r == '&' || r == '"' || r == '\'' || r == '`' || r == ';' {
			return -1
		}
		return r
	}, s))
}
