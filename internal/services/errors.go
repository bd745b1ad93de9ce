package services

import "errors"

// ErrorKind classifies expected, recoverable-by-caller failures. Anything
// outside these kinds is a store failure and propagates unwrapped.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindPermission ErrorKind = "permission"
	KindNotFound   ErrorKind = "not_found"
)

// DomainError is a typed business failure.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

func NewPermissionError(message string) *DomainError {
	return &DomainError{Kind: KindPermission, Message: message}
}

func NewNotFoundError(message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: message}
}

func isKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsPermission reports whether err is a role or ownership violation.
func IsPermission(err error) bool { return isKind(err, KindPermission) }

// IsNotFound reports whether err refers to an absent entity.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

var (
	ErrProjectNotFound      = NewNotFoundError("project not found")
	ErrStudyNotFound        = NewNotFoundError("study not found")
	ErrTaskNotFound         = NewNotFoundError("task not found")
	ErrRequestNotFound      = NewNotFoundError("request not found")
	ErrUserNotFound         = NewNotFoundError("user not found")
	ErrNotificationNotFound = NewNotFoundError("notification not found")

	ErrManagerRoleRequired = NewPermissionError("manager role required")
	ErrNotTaskHolder       = NewPermissionError("user does not hold this task")
	ErrFieldNotAllowed     = NewPermissionError("field may only be changed by a manager")

	ErrTitleRequired           = NewValidationError("title is required")
	ErrStudyRequired           = NewValidationError("research tasks require a study")
	ErrTaskTerminal            = NewValidationError("completed or cancelled tasks cannot be modified")
	ErrTaskAlreadyCompleted    = NewValidationError("task is already completed")
	ErrTaskCancelled           = NewValidationError("a cancelled task cannot be completed")
	ErrInvalidTransition       = NewValidationError("invalid status transition")
	ErrCompleteViaRequest      = NewValidationError("completion must go through the completion flow")
	ErrInvalidAssignee         = NewValidationError("one or more users do not exist or are not assignee-eligible")
	ErrSelfReassignment        = NewValidationError("cannot request reassignment to yourself")
	ErrDuplicatePendingRequest = NewValidationError("a pending request of this type already exists for this task")
	ErrRequestNotPending       = NewValidationError("request is no longer pending")
)
