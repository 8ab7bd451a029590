package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drjulio/clinic-api/model"
)

// PaymentTracker records every payment attempt against an enrollment. The
// (enrollment, provider id) pair is unique, so a replayed notification
// updates the attempt it already created instead of inserting another row.
type PaymentTracker struct {
	db *gorm.DB
}

// NewPaymentTracker creates a new payment tracker
func NewPaymentTracker(db *gorm.DB) *PaymentTracker {
	return &PaymentTracker{db: db}
}

// WithTx returns a copy of the tracker bound to the given transaction
func (t *PaymentTracker) WithTx(tx *gorm.DB) *PaymentTracker {
	return &PaymentTracker{db: tx}
}

// RecordAttempt upserts one payment attempt. On conflict the status, amount
// and raw payload are refreshed from the latest notification.
func (t *PaymentTracker) RecordAttempt(txn *model.PaymentTransaction) error {
	err := t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "enrollment_id"}, {Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "amount", "raw_payload", "updated_at",
		}),
	}).Create(txn).Error
	if err != nil {
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}
	return nil
}

// ListForEnrollment returns the attempts recorded against one enrollment
func (t *PaymentTracker) ListForEnrollment(enrollmentID uint) ([]model.PaymentTransaction, error) {
	var txns []model.PaymentTransaction
	if err := t.db.Where("enrollment_id = ?", enrollmentID).
		Order("created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment attempts: %w", err)
	}
	return txns, nil
}
