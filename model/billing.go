package model

import (
	"time"

	"gorm.io/gorm"
)

// BillingRecord tracks an amount owed by or charged to a patient
type BillingRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	PatientName string         `gorm:"not null" json:"patient_name"`
	Description string         `gorm:"type:text" json:"description"`
	Amount      float64        `gorm:"not null" json:"amount"`
	Status      string         `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, paid, cancelled
}

// TableName specifies the table name for BillingRecord
func (BillingRecord) TableName() string {
	return "billing_records"
}

// Invoice is a fiscal invoice (nota fiscal) issued by the clinic
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Number    string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	Amount    float64        `gorm:"not null" json:"amount"`
	DueDate   time.Time      `gorm:"not null" json:"due_date"`
	Status    string         `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, paid, cancelled
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}
