package service

import (
	"context"
	"errors"

	"findautopart/internal/repository"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// siNoExiste turns repository.ErrNoEncontrado into a NotFound with msg.
func siNoExiste(err error, msg string) error {
	if errors.Is(err, repository.ErrNoEncontrado) {
		return noEncontrado("%s", msg)
	}
	return err
}
