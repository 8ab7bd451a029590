package services

import (
	"testing"
	"time"

	"github.com/drjulio/clinic-api/model"
)

func TestWindowDays(t *testing.T) {
	policy := NewAccessPolicy(365)

	if got := policy.WindowDays(&model.Course{}); got != 365 {
		t.Errorf("default window = %d, want 365", got)
	}
	if got := policy.WindowDays(&model.Course{AccessDays: 90}); got != 90 {
		t.Errorf("override window = %d, want 90", got)
	}
	if got := policy.WindowDays(nil); got != 365 {
		t.Errorf("nil course window = %d, want 365", got)
	}
}

func TestNewAccessPolicyDefaults(t *testing.T) {
	if got := NewAccessPolicy(0).DefaultDays; got != 365 {
		t.Errorf("zero config default = %d, want 365", got)
	}
	if got := NewAccessPolicy(-5).DefaultDays; got != 365 {
		t.Errorf("negative config default = %d, want 365", got)
	}
}

func TestIsActive(t *testing.T) {
	policy := NewAccessPolicy(365)
	now := time.Now()

	cases := []struct {
		name       string
		enrollment *model.CourseEnrollment
		want       bool
	}{
		{
			name: "paid inside window",
			enrollment: &model.CourseEnrollment{
				PaymentStatus: model.PaymentStatusPaid,
				AccessStart:   timePtr(now.Add(-time.Hour)),
				AccessEnd:     timePtr(now.Add(time.Hour)),
			},
			want: true,
		},
		{
			name: "approved counts as paid",
			enrollment: &model.CourseEnrollment{
				PaymentStatus: model.PaymentStatusApproved,
				AccessStart:   timePtr(now.Add(-time.Hour)),
				AccessEnd:     timePtr(now.Add(time.Hour)),
			},
			want: true,
		},
		{
			name: "window expired",
			enrollment: &model.CourseEnrollment{
				PaymentStatus: model.PaymentStatusPaid,
				AccessStart:   timePtr(now.Add(-48 * time.Hour)),
				AccessEnd:     timePtr(now.Add(-time.Hour)),
			},
			want: false,
		},
		{
			name: "window not started",
			enrollment: &model.CourseEnrollment{
				PaymentStatus: model.PaymentStatusPaid,
				AccessStart:   timePtr(now.Add(time.Hour)),
				AccessEnd:     timePtr(now.Add(48 * time.Hour)),
			},
			want: false,
		},
		{
			name: "pending payment inside window",
			enrollment: &model.CourseEnrollment{
				PaymentStatus: model.PaymentStatusPending,
				AccessStart:   timePtr(now.Add(-time.Hour)),
				AccessEnd:     timePtr(now.Add(time.Hour)),
			},
			want: false,
		},
		{
			name: "paid but window never activated",
			enrollment: &model.CourseEnrollment{
				PaymentStatus: model.PaymentStatusPaid,
			},
			want: false,
		},
		{
			name:       "nil enrollment",
			enrollment: nil,
			want:       false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.IsActive(tc.enrollment, now); got != tc.want {
				t.Errorf("IsActive = %v, want %v", got, tc.want)
			}
		})
	}
}
