package services

import (
	"errors"
	"strings"

	"fintrack/internal/core"
)

// LoginMessage is the text shown on the login form for err.
func LoginMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingCredentials):
		return "Email and password are required"
	case errors.Is(err, core.ErrAuthUnavailable):
		return "Authentication service unavailable. Please check that the site URL is configured for the authentication service."
	case errors.Is(err, core.ErrInvalidCredentials):
		return "Invalid email or password. Please check your credentials or sign up if you don't have an account."
	case errors.Is(err, core.ErrEmailNotConfirmed):
		return "Please check your email and confirm your account before signing in."
	case errors.Is(err, core.ErrAuthNetwork):
		return "Network error. Please check your internet connection and try again."
	default:
		return "Login failed: " + err.Error()
	}
}

// SignUpMessage is the text shown on the sign-up form for err.
func SignUpMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingCredentials):
		return "Email and password are required"
	case errors.Is(err, core.ErrWeakPassword):
		return "Password must be at least 6 characters long"
	case errors.Is(err, core.ErrUserExists):
		return "An account with this email already exists. Please sign in instead."
	default:
		return err.Error()
	}
}

// AvatarMessage is the text shown on the avatar form for err.
func AvatarMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return "You must be signed in to upload an avatar"
	case errors.Is(err, core.ErrEmptyFile):
		return "Please select a file to upload"
	case errors.Is(err, core.ErrUnsupportedFile):
		return "Please upload a valid image file (JPEG, PNG, GIF, or WebP)"
	case errors.Is(err, core.ErrFileTooLarge):
		return "File size must be less than 10MB"
	case errors.Is(err, core.ErrImageTooLarge):
		return "Image dimensions are too large"
	case errors.Is(err, core.ErrBucketNotFound):
		return "Storage bucket not configured. Please set up the avatars bucket."
	case errors.Is(err, ErrAvatarSave):
		return "Failed to save avatar. Please try again."
	case errors.Is(err, ErrProfileUpdate):
		return "Failed to update profile. Please try again."
	case errors.Is(err, ErrUploadFailed):
		return "Upload failed: " + unwrapDetail(err)
	default:
		return "An error occurred while uploading the avatar. Please try again."
	}
}

// TransactionMessage is the text shown on the transaction form for err.
func TransactionMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return "You must be signed in to manage transactions"
	case errors.Is(err, core.ErrNotFound):
		return "Transaction not found"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a positive number"
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrInvalidDate):
		return "Invalid transaction: " + err.Error()
	default:
		return "Failed to save transaction. Please try again."
	}
}

// unwrapDetail strips the sentinel prefix from "<sentinel>: <detail>".
func unwrapDetail(err error) string {
	return strings.TrimPrefix(err.Error(), ErrUploadFailed.Error()+": ")
}
