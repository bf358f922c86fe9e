package core

import "errors"

// Validation
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrMissingCategory    = errors.New("category is required for expenses")
	ErrCategoryTooLong    = errors.New("category too long (max 100 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidDate        = errors.New("invalid date")
)

// Collaborator conditions. Adapters translate backend errors into these so
// callers can branch with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrUserExists         = errors.New("user already registered")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrAuthUnavailable    = errors.New("authentication service unavailable")
	ErrAuthNetwork        = errors.New("cannot reach authentication service")

	ErrBucketNotFound = errors.New("storage bucket not found")
	ErrStoragePolicy  = errors.New("storage policy violation")
	ErrObjectExists   = errors.New("object already exists")

	ErrEmptyFile       = errors.New("no file provided")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrImageTooLarge   = errors.New("image dimensions too large")
)
