package shared

import (
	"net/http"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
)

var ledgerClasses = []httpx.ErrorClass{
	{
		Status: http.StatusNotFound,
		Title:  "Not Found",
		Errors: []error{ErrEntryNotFound, ErrAccountNotFound, ErrFiscalYearNotFound, ErrRunNotFound},
	},
	{
		Status: http.StatusConflict,
		Title:  "Conflict",
		Errors: []error{
			ErrFiscalYearLocked, ErrAlreadyPosted, ErrNotPosted, ErrAlreadyReversed, ErrCannotEditPosted,
			ErrCannotDeletePosted, ErrSourceAlreadyLinked, ErrDuplicateCode, ErrHasChildren, ErrAccountInUse,
			ErrParentHasPostings, ErrParentHasOpening, ErrFiscalYearOverlap, ErrMissingSystemAccount, ErrIncompleteMapping,
		},
	},
	{
		Status: http.StatusUnprocessableEntity,
		Title:  "Validation Failed",
		Errors: []error{
			ErrInvalidFiscalYear, ErrDateOutOfRange, ErrInsufficientLines, ErrUnbalancedEntry, ErrInvalidLine,
			ErrAccountIsGroup, ErrAccountInactive, ErrInvalidCashFlowClass, ErrInvalidRange, ErrInvalidCatalog,
			ErrGroupOpening,
		},
	},
}

// RespondError writes the ledger error as an RFC7807 problem.
func RespondError(w http.ResponseWriter, err error) {
	httpx.RespondError(w, err, ledgerClasses...)
}
