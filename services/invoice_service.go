package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

// ErrInvoiceNotFound means no invoice matches the given id
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrInvoiceNumberTaken means another invoice already carries the number
var ErrInvoiceNumberTaken = errors.New("invoice number already in use")

// InvoiceService manages the clinic's fiscal invoices
type InvoiceService struct {
	db *gorm.DB
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// List returns invoices, optionally filtered by status, newest first
func (s *InvoiceService) List(status string) ([]model.Invoice, error) {
	query := s.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var invoices []model.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// GetByID fetches one invoice
func (s *InvoiceService) GetByID(id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := s.db.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return &invoice, nil
}

// Create inserts a new invoice. The number must be unique
func (s *InvoiceService) Create(invoice *model.Invoice) error {
	if err := s.db.Create(invoice).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrInvoiceNumberTaken
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// Update saves changes to an invoice
func (s *InvoiceService) Update(invoice *model.Invoice) error {
	if err := s.db.Save(invoice).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrInvoiceNumberTaken
		}
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// Delete soft-deletes an invoice
func (s *InvoiceService) Delete(id uint) error {
	result := s.db.Delete(&model.Invoice{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}
