package validators

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"yamdb/internal/apperr"

	"github.com/go-playground/validator/v10"
)

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
	MaxNameLength     = 256
	MaxSlugLength     = 50
	MinScore          = 1
	MaxScore          = 10
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	reservedUsernames = map[string]struct{}{
		"admin":     {},
		"superuser": {},
		"root":      {},
		"me":        {},
	}

	validate = validator.New()
)

// ValidateYear rejects years after the current calendar year of now.
func ValidateYear(year int, now time.Time) error {
	if year > now.Year() {
		return apperr.Validation("year", fmt.Sprintf("year %d is in the future", year))
	}
	return nil
}

// ValidateScore accepts the closed range [1, 10].
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return apperr.Validation("score", fmt.Sprintf("score must be between %d and %d", MinScore, MaxScore))
	}
	return nil
}

func IsReservedUsername(username string) bool {
	_, ok := reservedUsernames[strings.ToLower(username)]
	return ok
}

func ValidateUsername(username string) error {
	switch {
	case username == "":
		return apperr.Validation("username", "this field is required")
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return apperr.Validation("username", fmt.Sprintf("must be at most %d characters", MaxUsernameLength))
	case !usernamePattern.MatchString(username):
		return apperr.Validation("username", "may contain only letters, digits and @/./+/-/_")
	case IsReservedUsername(username):
		return apperr.Validation("username", fmt.Sprintf("username %q is reserved", username))
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return apperr.Validation("email", "this field is required")
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return apperr.Validation("email", fmt.Sprintf("must be at most %d characters", MaxEmailLength))
	}
	if err := validate.Var(email, "email"); err != nil {
		return apperr.Validation("email", "enter a valid email address")
	}
	return nil
}

func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation(field, "this field is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return apperr.Validation(field, fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	return nil
}

func ValidateSlug(slug string) error {
	if slug == "" {
		return apperr.Validation("slug", "this field is required")
	}
	if len(slug) > MaxSlugLength {
		return apperr.Validation("slug", fmt.Sprintf("must be at most %d characters", MaxSlugLength))
	}
	if !slugPattern.MatchString(slug) {
		return apperr.Validation("slug", "may contain only letters, digits, hyphens and underscores")
	}
	return nil
}
