package services

import "errors"

var (
	// ErrCourseNotFound means a payment referenced a course this system does
	// not sell. The caller should reject without recording anything.
	ErrCourseNotFound = errors.New("course not found")
	// ErrEnrollmentNotFound means no enrollment matches the given id
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrNotEnrollmentOwner means the requesting user does not own the
	// enrollment and is not an admin
	ErrNotEnrollmentOwner = errors.New("enrollment belongs to another user")
	// ErrAccessExpired means the enrollment exists but its access window is
	// not currently open
	ErrAccessExpired = errors.New("course access window is not active")
)
