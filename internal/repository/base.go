// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"

	"devconnect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// translate maps gorm errors onto the application error taxonomy.
// AppErrors returned from mutation callbacks pass through untouched.
func translate(err error, notFound *models.AppError) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("Resource already exists")
	}
	return models.NewInternalError(err)
}

func ownerSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "avatar")
}
