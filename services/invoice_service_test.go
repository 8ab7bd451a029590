package services

import (
	"errors"
	"testing"
	"time"

	"github.com/drjulio/clinic-api/model"
)

func TestInvoiceCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db)

	due := time.Now().AddDate(0, 1, 0)
	invoice := &model.Invoice{Number: "NF-2026-001", Amount: 450, DueDate: due}
	if err := svc.Create(invoice); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := svc.GetByID(invoice.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != "pending" {
		t.Errorf("default status = %q, want pending", stored.Status)
	}

	invoice.Status = "paid"
	if err := svc.Update(invoice); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	paid, err := svc.List("paid")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paid) != 1 || paid[0].Number != "NF-2026-001" {
		t.Errorf("List(paid) = %v, want the updated invoice", paid)
	}

	if err := svc.Delete(invoice.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(invoice.ID); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("second Delete returned %v, want ErrInvoiceNotFound", err)
	}
}

func TestInvoiceNumberMustBeUnique(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db)

	due := time.Now().AddDate(0, 1, 0)
	if err := svc.Create(&model.Invoice{Number: "NF-1", Amount: 100, DueDate: due}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := svc.Create(&model.Invoice{Number: "NF-1", Amount: 200, DueDate: due})
	if !errors.Is(err, ErrInvoiceNumberTaken) {
		t.Errorf("duplicate Create returned %v, want ErrInvoiceNumberTaken", err)
	}
}
