package shared

import "errors"

var (
	// ErrInvalidFiscalYear indicates a missing fiscal year or one owned by another company.
	ErrInvalidFiscalYear = errors.New("accounting: invalid fiscal year")
	// ErrFiscalYearLocked indicates the fiscal year no longer accepts changes.
	ErrFiscalYearLocked = errors.New("accounting: fiscal year locked")
	// ErrFiscalYearOverlap indicates overlapping fiscal year ranges.
	ErrFiscalYearOverlap = errors.New("accounting: fiscal year overlaps an existing one")
	// ErrFiscalYearNotFound indicates no fiscal year matched.
	ErrFiscalYearNotFound = errors.New("accounting: fiscal year not found")
	// ErrDateOutOfRange indicates journal date mismatch.
	ErrDateOutOfRange = errors.New("accounting: date outside fiscal year")
	// ErrInsufficientLines indicates less than two lines.
	ErrInsufficientLines = errors.New("accounting: journal requires at least two lines")
	// ErrUnbalancedEntry indicates debit != credit.
	ErrUnbalancedEntry = errors.New("accounting: journal lines must balance")
	// ErrInvalidLine indicates a negative or two-sided line.
	ErrInvalidLine = errors.New("accounting: invalid journal line")
	// ErrAlreadyPosted indicates the entry is already posted.
	ErrAlreadyPosted = errors.New("accounting: entry already posted")
	// ErrNotPosted indicates only posted entries can be reversed.
	ErrNotPosted = errors.New("accounting: entry not posted")
	// ErrAlreadyReversed indicates the entry carries a reversal.
	ErrAlreadyReversed = errors.New("accounting: entry already reversed")
	// ErrCannotEditPosted indicates posted entries are immutable.
	ErrCannotEditPosted = errors.New("accounting: posted entry cannot be edited")
	// ErrCannotDeletePosted indicates posted entries cannot be removed.
	ErrCannotDeletePosted = errors.New("accounting: posted entry cannot be deleted")
	// ErrEntryNotFound indicates missing entry.
	ErrEntryNotFound = errors.New("accounting: journal entry not found")
	// ErrSourceAlreadyLinked indicates idempotency conflict.
	ErrSourceAlreadyLinked = errors.New("accounting: source already linked")

	// ErrAccountNotFound indicates a missing account or one owned by another company.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrAccountIsGroup indicates postings against a group account.
	ErrAccountIsGroup = errors.New("accounting: group account cannot take postings")
	// ErrAccountInactive indicates postings against an inactive account.
	ErrAccountInactive = errors.New("accounting: account inactive")
	// ErrDuplicateCode indicates the account code is taken.
	ErrDuplicateCode = errors.New("accounting: account code already exists")
	// ErrHasChildren indicates the account still has children.
	ErrHasChildren = errors.New("accounting: account has children")
	// ErrAccountInUse indicates the account has journal lines.
	ErrAccountInUse = errors.New("accounting: account has postings")
	// ErrParentHasPostings indicates a posted-to leaf cannot become a group.
	ErrParentHasPostings = errors.New("accounting: parent account has postings")
	// ErrParentHasOpening indicates a leaf with an opening balance cannot become a group.
	ErrParentHasOpening = errors.New("accounting: parent account has an opening balance")
	// ErrGroupOpening indicates an opening balance was set on a group account.
	ErrGroupOpening = errors.New("accounting: group accounts cannot carry an opening balance")
	// ErrInvalidCashFlowClass indicates the class does not fit the account type.
	ErrInvalidCashFlowClass = errors.New("accounting: invalid cash flow class")
	// ErrMissingSystemAccount indicates a configured system account is absent.
	ErrMissingSystemAccount = errors.New("accounting: system account missing")

	// ErrIncompleteMapping indicates statement lines without account coverage in strict mode.
	ErrIncompleteMapping = errors.New("accounting: incomplete statement mapping")
	// ErrInvalidCatalog indicates a broken rollup graph.
	ErrInvalidCatalog = errors.New("accounting: invalid schedule catalog")
	// ErrInvalidRange indicates an empty or inverted date range.
	ErrInvalidRange = errors.New("accounting: invalid date range")
	// ErrRunNotFound indicates missing statement run.
	ErrRunNotFound = errors.New("accounting: statement run not found")
)
