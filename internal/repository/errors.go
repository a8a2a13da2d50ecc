package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicado is returned when a unique index rejects a write.
	ErrDuplicado = errors.New("registro duplicado")
	// ErrNoEncontrado is returned when a lookup matches no row.
	ErrNoEncontrado = errors.New("registro no encontrado")
)

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// traducirError maps driver and ORM errors onto the repository sentinels.
// Other errors pass through unchanged.
func traducirError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEncontrado
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicado
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicado
	}
	return err
}

// conn returns tx when the caller runs inside a transaction, db otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func paginar(page, limit int) (offset int, size int) {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}
