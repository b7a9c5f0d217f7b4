package service

import (
	"fmt"

	"gorm.io/gorm"

	"landrecords/internal/db"
	"landrecords/internal/errors"
)

// notFoundAs converts a missing-row error into the domain sentinel and wraps
// anything else with op for context.
func notFoundAs(err error, sentinel *errors.Error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

// conflictAs converts a unique violation into the sentinel of the column that
// caused it. fallback is used when the driver message names no known column.
func conflictAs(err error, fallback *errors.Error, byColumn map[string]*errors.Error, op string) error {
	if !db.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	cols := make([]string, 0, len(byColumn))
	for c := range byColumn {
		cols = append(cols, c)
	}
	if col := db.ViolatedColumn(err, cols...); col != "" {
		return byColumn[col].Wrap(err)
	}
	return fallback.Wrap(err)
}
