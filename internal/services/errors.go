package services

import "errors"

// Failure kinds. Every expected business failure returned by this package
// unwraps to exactly one of them.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Project and membership errors
var (
	// ErrProjectNotFound covers missing and inactive projects alike.
	ErrProjectNotFound = newError(ErrNotFound, "project not found")
	// ErrProjectInactive is a NotFound so inactive projects do not leak.
	ErrProjectInactive   = newError(ErrNotFound, "project not found")
	ErrProjectStillLive  = newError(ErrConflict, "project must be deleted before it can be purged")
	ErrInvalidTitle      = newError(ErrValidation, "title is required and must be at most 200 characters")
	ErrDescriptionEmpty  = newError(ErrValidation, "description is required")
	ErrAlreadyMember     = newError(ErrConflict, "user is already a member of this project")
	ErrIsOrganizer       = newError(ErrConflict, "the organizer cannot be removed from the project")
	ErrMemberNotFound    = newError(ErrNotFound, "project member not found")
	ErrMemberActive      = newError(ErrConflict, "project member is already active")
	ErrMemberSuspended   = newError(ErrConflict, "project member is already suspended")
	ErrUserNotFound      = newError(ErrNotFound, "user not found")
	ErrNotAuthenticated  = newError(ErrUnauthenticated, "authentication required")
	ErrProjectForbidden  = newError(ErrForbidden, "access denied")
	ErrAdminOnly         = newError(ErrForbidden, "administrator role required")
	ErrSummaryNotFound   = newError(ErrNotFound, "no summary has been generated for this project")
	ErrIdentifierMissing = newError(ErrValidation, "a username or email is required")
)

// Task, assignment and comment errors
var (
	ErrTaskNotFound     = newError(ErrNotFound, "task not found")
	ErrTaskForbidden    = newError(ErrForbidden, "access denied")
	ErrInvalidAssignee  = newError(ErrValidation, "assignee must be the organizer or an active member of the project")
	ErrInvalidDateRange = newError(ErrValidation, "end date must be after start date")
	ErrInvalidStatus    = newError(ErrValidation, "status must be one of NOT_STARTED, IN_PROGRESS, COMPLETED")
	ErrCommentEmpty     = newError(ErrValidation, "comment text cannot be empty")
	ErrCommentNotFound  = newError(ErrNotFound, "comment not found")
	ErrCommentForbidden = newError(ErrForbidden, "access denied")
	ErrInvalidDueInDays = newError(ErrValidation, "due_in_days must be positive")
)

// Authentication errors
var (
	ErrUsernameTaken        = newError(ErrConflict, "username already exists")
	ErrEmailTaken           = newError(ErrConflict, "email already exists")
	ErrInvalidCredentials   = newError(ErrUnauthenticated, "invalid username or password")
	ErrPasswordTooShort     = newError(ErrValidation, "password too short")
	ErrUsernameRequired     = newError(ErrValidation, "username is required")
	ErrEmailRequired        = newError(ErrValidation, "email is required")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrInvalidToken         = newError(ErrUnauthenticated, "invalid or expired token")
)
