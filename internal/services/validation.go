package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"vectora/internal/errs"
	"vectora/internal/models"
	"vectora/internal/security"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
	passwordMaxLen = 100

	titleMaxLen       = 500
	descriptionMaxLen = 5000
	categoryMaxLen    = 100
	maxTags           = 10
	tagMaxLen         = 50

	defaultReminderMinutes = 30
	maxReminderMinutes     = 7 * 24 * 60
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// normalizeUsername sanitises and validates a username.
func normalizeUsername(raw string) (string, error) {
	u := security.SanitizeString(raw, usernameMaxLen)
	if n := utf8.RuneCountInString(u); n < usernameMinLen || n > usernameMaxLen {
		return "", invalid("username must be %d-%d characters", usernameMinLen, usernameMaxLen)
	}
	if !usernameRe.MatchString(u) {
		return "", invalid("username can only contain letters, numbers, and underscores")
	}
	return u, nil
}

func validatePassword(p string) error {
	n := utf8.RuneCountInString(p)
	if n < passwordMinLen {
		return invalid("password must be at least %d characters long", passwordMinLen)
	}
	if n > passwordMaxLen {
		return invalid("password must be at most %d characters long", passwordMaxLen)
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter {
		return invalid("password must contain at least one letter")
	}
	if !digit {
		return invalid("password must contain at least one digit")
	}
	return nil
}

func normalizeTitle(raw string) (string, error) {
	t := security.SanitizeString(raw, titleMaxLen)
	if t == "" {
		return "", invalid("title is required")
	}
	return t, nil
}

func normalizeDescription(raw string) (string, error) {
	if utf8.RuneCountInString(raw) > descriptionMaxLen {
		return "", invalid("description must be at most %d characters", descriptionMaxLen)
	}
	return security.SanitizeString(raw, descriptionMaxLen), nil
}

func normalizeCategory(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	if utf8.RuneCountInString(*raw) > categoryMaxLen {
		return nil, invalid("category must be at most %d characters", categoryMaxLen)
	}
	c := security.SanitizeString(*raw, categoryMaxLen)
	if c == "" {
		return nil, nil
	}
	return &c, nil
}

func normalizeTags(raw []string) ([]string, error) {
	if len(raw) > maxTags {
		return nil, invalid("maximum %d tags allowed", maxTags)
	}
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		if utf8.RuneCountInString(tag) > tagMaxLen {
			return nil, invalid("each tag must be at most %d characters", tagMaxLen)
		}
		if t := security.SanitizeString(tag, tagMaxLen); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

func normalizePriority(p models.TaskPriority) (models.TaskPriority, error) {
	p = models.TaskPriority(strings.ToLower(strings.TrimSpace(string(p))))
	if p == "" {
		return models.PriorityNormal, nil
	}
	if !p.Valid() {
		return "", invalid("priority must be one of low, normal, high")
	}
	return p, nil
}

func validatePosition(p int) error {
	if p < 0 {
		return invalid("position must be non-negative")
	}
	return nil
}

func validateReminderMinutes(m int) error {
	if m < 0 || m > maxReminderMinutes {
		return invalid("reminder_minutes_before must be between 0 and %d", maxReminderMinutes)
	}
	return nil
}
