package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrUserDisabled      = errors.New("user disabled")

	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanNotPublished  = errors.New("plan not published")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrInvalidStructure  = errors.New("invalid plan structure")
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrUnsupportedImport = errors.New("unsupported import file")

	// ErrStoreUnavailable wraps failures of the underlying persistence layer.
	ErrStoreUnavailable = errors.New("store unavailable")
)
