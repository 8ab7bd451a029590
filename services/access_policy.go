package services

import (
	"time"

	"github.com/drjulio/clinic-api/model"
)

// AccessPolicy decides how long a paid enrollment keeps course access and
// whether access is currently open
type AccessPolicy struct {
	DefaultDays int
}

// NewAccessPolicy creates a policy with the given default window length.
// A non-positive default falls back to one year.
func NewAccessPolicy(defaultDays int) *AccessPolicy {
	if defaultDays <= 0 {
		defaultDays = 365
	}
	return &AccessPolicy{DefaultDays: defaultDays}
}

// WindowDays returns the access window length for a course, preferring the
// course's own override over the configured default
func (p *AccessPolicy) WindowDays(course *model.Course) int {
	if course != nil && course.AccessDays > 0 {
		return course.AccessDays
	}
	return p.DefaultDays
}

// Window computes the access interval that starts now for the given course
func (p *AccessPolicy) Window(course *model.Course, now time.Time) (start, end time.Time) {
	start = now
	end = now.AddDate(0, 0, p.WindowDays(course))
	return start, end
}

// IsActive reports whether the enrollment grants access at the given
// instant: the payment must be in a paid-equivalent state and the window
// must be open. An enrollment whose window was never activated grants
// nothing regardless of payment state.
func (p *AccessPolicy) IsActive(enrollment *model.CourseEnrollment, now time.Time) bool {
	if enrollment == nil || !model.IsPaidStatus(enrollment.PaymentStatus) {
		return false
	}
	if enrollment.AccessStart == nil || enrollment.AccessEnd == nil {
		return false
	}
	return !now.Before(*enrollment.AccessStart) && !now.After(*enrollment.AccessEnd)
}
