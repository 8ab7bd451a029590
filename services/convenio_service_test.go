package services

import (
	"errors"
	"testing"

	"github.com/drjulio/clinic-api/model"
)

func TestConvenioCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvenioService(db)

	convenio := &model.Convenio{Name: "Odonto Prev", Details: "Cobertura ortodontia"}
	if err := svc.Create(convenio); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := svc.GetByID(convenio.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != "active" {
		t.Errorf("default status = %q, want active", stored.Status)
	}

	stored.Status = "inactive"
	if err := svc.Update(stored); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	active, err := svc.List("active")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("List(active) returned %d rows, want 0", len(active))
	}

	if err := svc.Delete(stored.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.GetByID(stored.ID); !errors.Is(err, ErrConvenioNotFound) {
		t.Errorf("GetByID after delete returned %v, want ErrConvenioNotFound", err)
	}
}
