package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment payment states. Provider vocabularies are normalized onto this
// set; only paid-equivalent states grant content access.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusApproved = "approved"
	PaymentStatusRefunded = "refunded"
	PaymentStatusCanceled = "canceled"
)

// IsPaidStatus reports whether a payment status counts as a successful payment
func IsPaidStatus(status string) bool {
	return status == PaymentStatusPaid || status == PaymentStatusApproved
}

// CourseEnrollment binds one user to one course with payment and access state.
// At most one row exists per (course, user) pair.
type CourseEnrollment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID      uint           `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"course_id"`
	UserID        uint           `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"user_id"`
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `gorm:"not null;index" json:"email"`
	Phone         string         `json:"phone"`
	PaymentStatus string         `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	TransactionID string         `gorm:"type:varchar(100)" json:"transaction_id"`
	AccessStart   *time.Time     `json:"access_start"`
	AccessEnd     *time.Time     `json:"access_end"`

	// Relationships
	Course       Course               `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	User         User                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Transactions []PaymentTransaction `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for CourseEnrollment
func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

// PaymentTransaction records one payment attempt against an enrollment.
// Rows are unique per (enrollment, provider id); a replayed provider
// notification updates the existing row instead of inserting a duplicate.
type PaymentTransaction struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	EnrollmentID uint           `gorm:"not null;uniqueIndex:idx_txn_enrollment_provider" json:"enrollment_id"`
	ProviderID   string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_txn_enrollment_provider" json:"provider_id"`
	Provider     string         `gorm:"type:varchar(50)" json:"provider"` // hotmart, stripe, manual
	Amount       float64        `gorm:"not null" json:"amount"`
	Status       string         `gorm:"type:varchar(20);default:'paid'" json:"status"`
	RawPayload   datatypes.JSON `gorm:"type:jsonb" json:"-"` // provider notification as received

	// Relationships
	Enrollment CourseEnrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for PaymentTransaction
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
