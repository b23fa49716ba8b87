package fiscalyears

import (
	"errors"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// CreateInput describes a new fiscal year.
type CreateInput struct {
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required"`
	MakeCurrent bool      `json:"makeCurrent"`
}

// Validate ensures the range is usable.
func (in CreateInput) Validate() error {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return errors.New("accounting: fiscal year dates required")
	}
	if in.EndDate.Before(in.StartDate) {
		return shared.ErrInvalidRange
	}
	if len(strings.TrimSpace(in.Name)) > 32 {
		return errors.New("accounting: fiscal year name too long")
	}
	return nil
}
