package model

import (
	"time"

	"gorm.io/gorm"
)

// Convenio is a health-insurance agreement accepted by the clinic
type Convenio struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"type:varchar(120);not null" json:"name"`
	Details   string         `gorm:"type:text" json:"details"`
	Status    string         `gorm:"type:varchar(20);default:'active'" json:"status"` // active, inactive
}

// TableName specifies the table name for Convenio
func (Convenio) TableName() string {
	return "convenios"
}
