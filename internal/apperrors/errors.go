package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrUnbalanced indicates that a journal's debits and credits do not sum to
// the same amount per settlement currency.
var ErrUnbalanced = errors.New("journal debits and credits do not balance")

// ErrPeriodClosed indicates a posting attempt into an accounting period that
// does not accept the entry under the period policy.
var ErrPeriodClosed = errors.New("accounting period does not accept postings")

// ErrPeriodTransition indicates an illegal accounting period state change
// (backwards or skipping a state).
var ErrPeriodTransition = errors.New("illegal accounting period transition")

// ErrAccountInactive indicates a posting references a deactivated account.
var ErrAccountInactive = errors.New("account is inactive")

// ErrPostingNotAllowed indicates a posting references a header/control
// account that does not accept direct postings.
var ErrPostingNotAllowed = errors.New("account does not allow direct postings")

// ErrPolarityViolation indicates a balance mutation would leave an account
// with a balance of the wrong sign for its type.
var ErrPolarityViolation = errors.New("account balance polarity violation")

// ErrAlreadyReversed indicates an attempt to reverse a journal that has
// already been reversed.
var ErrAlreadyReversed = errors.New("journal has already been reversed")
