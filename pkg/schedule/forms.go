package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/smckee/nagmail/pkg/db"
)

// ValidationError is a recoverable, field-scoped input problem. The
// web layer re-prompts with these messages; persisted state is never
// touched while any are present.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// AckInput is a parsed acknowledgement form. Fields are always
// usable: bad or missing values are replaced with defaults and the
// problem is reported alongside.
type AckInput struct {
	Done    time.Time
	NextDue time.Time
}

// ParseAck parses the completion and next-due dates off the
// acknowledgement form. Defaults are today and done+interval.
func ParseAck(doneValue, nextValue string, intervalDays int, today time.Time) (AckInput, []ValidationError) {
	var errs []ValidationError

	done := db.ToDate(today)
	if v := strings.TrimSpace(doneValue); v != "" {
		parsed, err := time.Parse(DateLayout, v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "done", Message: "not a valid date"})
		} else {
			done = db.ToDate(parsed)
		}
	}

	next := DefaultNextDue(done, intervalDays)
	if v := strings.TrimSpace(nextValue); v != "" {
		parsed, err := time.Parse(DateLayout, v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "next", Message: "not a valid date"})
		} else {
			next = db.ToDate(parsed)
		}
	}

	return AckInput{Done: done, NextDue: next}, errs
}

// TaskInput is a parsed task create/edit form.
type TaskInput struct {
	Name         string
	Description  string
	Kind         string
	IntervalDays int
	Due          time.Time
}

// ParseTaskForm validates the task form. On errors the returned input
// still carries usable defaults so the form can re-render filled in.
func ParseTaskForm(name, description, kind, intervalValue, dueValue string, today time.Time) (TaskInput, []ValidationError) {
	var errs []ValidationError

	input := TaskInput{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Kind:        db.TaskKindNormal,
	}
	if input.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "a name is required"})
	}
	if kind == db.TaskKindExact {
		input.Kind = db.TaskKindExact
	}

	input.IntervalDays = 1
	if v := strings.TrimSpace(intervalValue); v != "" {
		interval, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{Field: "interval", Message: "not a number"})
		case interval < 1:
			errs = append(errs, ValidationError{Field: "interval", Message: "must be at least one day"})
		default:
			input.IntervalDays = interval
		}
	} else {
		errs = append(errs, ValidationError{Field: "interval", Message: "an interval is required"})
	}

	input.Due = db.ToDate(today)
	if v := strings.TrimSpace(dueValue); v != "" {
		parsed, err := time.Parse(DateLayout, v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "due", Message: "not a valid date"})
		} else {
			input.Due = db.ToDate(parsed)
		}
	} else {
		errs = append(errs, ValidationError{Field: "due", Message: "a due date is required"})
	}

	return input, errs
}
