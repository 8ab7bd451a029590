package services

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// uniqueViolation is the Postgres error code for a unique index conflict
const uniqueViolation = "23505"

// isDuplicateKey reports whether err means a unique index rejected the
// write. GORM translates this for most drivers; the pq check covers raw
// Postgres errors that arrive untranslated.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
