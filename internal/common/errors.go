// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Extraction and parsing errors. Both are local to one document and
	// never fatal to the run.
	ErrDocumentUnreadable = errors.New("document unreadable")
	ErrNoTransactions     = errors.New("no transactions found")

	// Classification errors. Local to one batch.
	ErrUnparseableReply = errors.New("classification reply unparseable")
	ErrMissingField     = errors.New("classified record missing required field")

	// Ledger errors. A store that cannot be opened or saved aborts the
	// run: partial financial writes are worse than no write.
	ErrLedgerIO = errors.New("ledger store I/O failure")

	// Aggregation errors.
	ErrInsufficientData = errors.New("insufficient data for aggregation")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")

	// ErrRateLimit indicates that an external API rate limit was exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
