package core

import "fmt"

// NotFoundError marks a lookup whose referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidSplitError marks a share computation with bad input: empty
// participants, a non-positive total, or weights that do not sum to 1.
type InvalidSplitError struct {
	Reason string
}

func (e *InvalidSplitError) Error() string {
	return "invalid split: " + e.Reason
}

// InvalidLoanStateError marks a loan operation attempted from a status
// that does not allow it.
type InvalidLoanStateError struct {
	LoanID int64
	Status LoanStatus
	Op     string
}

func (e *InvalidLoanStateError) Error() string {
	return fmt.Sprintf("loan %d: cannot %s while %s", e.LoanID, e.Op, e.Status)
}

// InvalidArgumentError marks validation-class failures on input.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// IllegalStateError marks an operation that conflicts with current ledger
// state, e.g. removing a group member who still has unsettled transactions.
type IllegalStateError struct {
	Reason string
}

func (e *IllegalStateError) Error() string {
	return "illegal state: " + e.Reason
}
