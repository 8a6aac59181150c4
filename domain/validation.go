package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	linkSchemePattern = regexp.MustCompile(`^https?://.+`)
	linkWWWPattern    = regexp.MustCompile(`^www\..+`)
	linkHostPattern   = regexp.MustCompile(`^[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Violation describes one failed field constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violated constraint of an entity.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

// Validator checks task fields. Owners must belong to one of the allowed
// email domains, written in lower case.
type Validator struct {
	ownerPattern *regexp.Regexp
	domains      []string
}

// NewValidator builds a validator for the given owner domains. An empty list
// falls back to gmail.com.
func NewValidator(domains []string) *Validator {
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(d, "@")))
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{"gmail.com"}
	}

	quoted := make([]string, 0, len(cleaned))
	for _, d := range cleaned {
		quoted = append(quoted, regexp.QuoteMeta(d))
	}
	pattern := fmt.Sprintf(`^[a-zA-Z0-9._%%+-]+@(%s)$`, strings.Join(quoted, "|"))

	return &Validator{
		ownerPattern: regexp.MustCompile(pattern),
		domains:      cleaned,
	}
}

// Domains returns the allowed owner domains.
func (v *Validator) Domains() []string {
	return append([]string(nil), v.domains...)
}

// ValidOwner reports whether email is an address on an allowed domain.
func (v *Validator) ValidOwner(email string) bool {
	return v.ownerPattern.MatchString(email)
}

// MissingParent is the INVALID error for a parent_id naming no stored task.
func MissingParent() error {
	return WrapError(ErrCodeInvalid, "task validation failed", &ValidationError{
		Violations: []Violation{{Field: "parent_id", Message: "parent task does not exist"}},
	})
}

// ValidLink accepts absolute http(s) URLs, www.-prefixed and bare domain values.
func ValidLink(link string) bool {
	return linkSchemePattern.MatchString(link) ||
		linkWWWPattern.MatchString(link) ||
		linkHostPattern.MatchString(link)
}

// Validate returns nil or an INVALID domain error wrapping a *ValidationError
// that lists every violation found.
func (v *Validator) Validate(task *Task) error {
	if task == nil {
		return ErrInvalidPayload
	}

	verr := &ValidationError{}
	if task.Title == "" {
		verr.add("title", "title is required")
	}
	if task.Module == "" {
		verr.add("module", "module is required")
	}
	if task.DueDate.IsZero() {
		verr.add("due_date", "due date is required")
	}
	if len(task.Owners) == 0 {
		verr.add("owners", "at least one owner is required")
	}
	for _, owner := range task.Owners {
		if !v.ValidOwner(owner) {
			verr.add("owners", fmt.Sprintf("%q is not a valid address on %s", owner, strings.Join(v.domains, ", ")))
		}
	}
	if !task.Status.Valid() {
		verr.add("status", fmt.Sprintf("unknown status %q", task.Status))
	}
	if !task.Priority.Valid() {
		verr.add("priority", fmt.Sprintf("unknown priority %q", task.Priority))
	}
	if !task.Category.Valid() {
		verr.add("category", fmt.Sprintf("unknown category %q", task.Category))
	}
	if task.Link != "" && !ValidLink(task.Link) {
		verr.add("link", "link must be a valid URL")
	}
	if task.EstimatedMinutes < 0 {
		verr.add("estimated_minutes", "must not be negative")
	}
	if task.TimeSpent < 0 {
		verr.add("time_spent", "must not be negative")
	}
	if task.PomodoroCount < 0 {
		verr.add("pomodoro_count", "must not be negative")
	}
	if task.ParentID != "" && task.ParentID == task.ID {
		verr.add("parent_id", "a task cannot be its own parent")
	}
	for i, c := range task.Comments {
		if c.Author == "" || c.Message == "" {
			verr.add(fmt.Sprintf("comments[%d]", i), "author and message are required")
		}
	}

	if len(verr.Violations) > 0 {
		return WrapError(ErrCodeInvalid, "task validation failed", verr)
	}
	return nil
}
