package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrActivityNotFound is returned when an activity does not exist or belongs to another user.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrBudgetExceeded is matched by every *BudgetError.
	ErrBudgetExceeded = errors.New("total minutes for the day cannot exceed 1440")
	// ErrInvalidInput is matched by ValidationErrors.
	ErrInvalidInput = errors.New("invalid activity input")
)

// BudgetError reports a write that would push a day past DailyBudgetMinutes.
type BudgetError struct {
	Date             string
	UsedMinutes      int
	RequestedMinutes int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("%s: %s already has %d minutes logged, %d more requested",
		ErrBudgetExceeded, e.Date, e.UsedMinutes, e.RequestedMinutes)
}

// Is lets errors.Is match the sentinel.
func (e *BudgetError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

// RemainingMinutes is the capacity left on the day before the rejected write.
func (e *BudgetError) RemainingMinutes() int {
	return remaining(e.UsedMinutes)
}

// CheckBudget verifies that adding requested minutes to a day that already holds used
// minutes stays within DailyBudgetMinutes.
func CheckBudget(date string, used, requested int) error {
	if requested > DailyBudgetMinutes-used {
		return &BudgetError{Date: date, UsedMinutes: used, RequestedMinutes: requested}
	}
	return nil
}

func remaining(used int) int {
	if used >= DailyBudgetMinutes {
		return 0
	}
	return DailyBudgetMinutes - used
}

// ValidationErrors maps an input field name to a client-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is match the sentinel.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}
