package task

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/roach88/fsmjudge/internal/oracle"
)

// Validation error codes (E200-E299)
const (
	ErrSlugInvalid    = "E201" // slug is not lowercase kebab-case
	ErrNameEmpty      = "E202" // name is required
	ErrScriptCompile  = "E203" // script does not compile
	ErrScriptSelfTest = "E204" // script fails its own self-check
	ErrProfileUnknown = "E205" // unknown grading profile
	ErrDuplicateSlug  = "E206" // slug declared twice
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidationError represents a task that loaded but cannot be graded.
type ValidationError struct {
	Slug    string `json:"slug"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] task %s: %s: %s", e.Code, e.Slug, e.Field, e.Message)
}

// Validate checks tasks for problems the schema cannot express. It
// compiles each script and runs its self-check. Returns all errors found.
func Validate(tasks []Task, logger *slog.Logger) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(tasks))

	for i := range tasks {
		t := &tasks[i]
		if seen[t.Slug] {
			errs = append(errs, ValidationError{Slug: t.Slug, Field: "slug", Message: "declared more than once", Code: ErrDuplicateSlug})
		}
		seen[t.Slug] = true
		errs = append(errs, validateTask(t, logger)...)
	}
	return errs
}

func validateTask(t *Task, logger *slog.Logger) []ValidationError {
	var errs []ValidationError

	if !slugPattern.MatchString(t.Slug) {
		errs = append(errs, ValidationError{
			Slug:    t.Slug,
			Field:   "slug",
			Message: "must be lowercase letters and digits separated by single hyphens",
			Code:    ErrSlugInvalid,
		})
	}

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, ValidationError{Slug: t.Slug, Field: "name", Message: "name is required and must be non-empty", Code: ErrNameEmpty})
	}

	if _, err := t.GradingProfile(); err != nil {
		errs = append(errs, ValidationError{Slug: t.Slug, Field: "profile", Message: err.Error(), Code: ErrProfileUnknown})
	}

	if _, err := oracle.New(t.Script, oracle.WithLimits(t.Limits()), oracle.WithLogger(logger)); err != nil {
		code := ErrScriptCompile
		var se *oracle.ScriptError
		if errors.As(err, &se) && se.Stage == oracle.StageSelfCheck {
			code = ErrScriptSelfTest
		}
		errs = append(errs, ValidationError{Slug: t.Slug, Field: "script", Message: err.Error(), Code: code})
	}

	return errs
}
