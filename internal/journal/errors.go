package journal

import "errors"

// Sentinel errors returned by the journal services. Handlers map these to
// HTTP statuses with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrTradeClosed     = errors.New("trade is already closed")
	ErrInvalidExitDate = errors.New("exit date cannot be before trade date")
	ErrReferenced      = errors.New("record is referenced by existing trades")
)
